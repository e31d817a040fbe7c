package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeNotActive   = errors.New("employee is not active")
	ErrInvalidEmployeeID   = errors.New("invalid employee id")
	ErrAmbiguousDriverName = errors.New("more than one active employee matches this driver name")
)
