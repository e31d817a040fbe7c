package load

import "errors"

var (
	ErrLoadNotFound     = errors.New("load not found")
	ErrLoadHasNoDriver  = errors.New("load has no assigned driver")
	ErrLoadNotDelivered = errors.New("load has no delivery date")
)
