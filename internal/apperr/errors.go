package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidID  = errors.New("invalid note id")
	ErrValidation = errors.New("validation failed")
)
