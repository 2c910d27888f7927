package repository

import "errors"

var (
	ErrDuplicateOrderRef  = errors.New("order reference already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidDialogState = errors.New("invalid dialog state")
)
