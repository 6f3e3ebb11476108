package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid data")
	ErrInvalidID = errors.New("invalid id")
)
