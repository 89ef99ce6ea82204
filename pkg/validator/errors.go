package validator

import "errors"

var (
	ErrMissingProductID     = errors.New("product_id is required")
	ErrProductIDNotNumber   = errors.New("product_id must be a number")
	ErrProductIDNotInteger  = errors.New("product_id must be an integer")
	ErrProductIDNotPositive = errors.New("product_id must be positive")
	ErrProductIDOutOfRange  = errors.New("product_id is out of range")
	ErrMissingAction        = errors.New("action is required")
	ErrActionNotString      = errors.New("action must be a string")
)
