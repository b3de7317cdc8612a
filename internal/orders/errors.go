package orders

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("order not found")
	ErrTransaction = errors.New("order transaction failed")
)
