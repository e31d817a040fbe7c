package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrMissingActor           = errors.New("user_id claim is missing or invalid")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
