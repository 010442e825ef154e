package model

import "errors"

// ErrValidation is wrapped by every Validate failure.
var ErrValidation = errors.New("validation failed")

// Store lookups return these regardless of the backend in use.
var (
	ErrTraderNotFound      = errors.New("trader not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrProductTypeNotFound = errors.New("product type not found")
)
