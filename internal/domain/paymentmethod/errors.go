package paymentmethod

import "errors"

var (
	ErrHistoryNotFound              = errors.New("payment method history not found")
	ErrEffectiveDateBeforeOpenEntry = errors.New("effective date must not be before the current payment method's effective date")
)
