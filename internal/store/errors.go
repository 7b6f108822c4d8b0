package store

import "errors"

var (
	ErrNotFound          = errors.New("item not found")
	ErrDuplicate         = errors.New("duplicate item")
	ErrInvalidStatusType = errors.New("invalid status type")
	ErrInvalidReference  = errors.New("referenced item does not exist")
	ErrInvalidValue      = errors.New("invalid or missing value")
	ErrInUse             = errors.New("item is referenced by other items")
	ErrInvalidTransition = errors.New("invalid turn status transition")
	ErrUnknownEnumValue  = errors.New("unknown enum value")
)
