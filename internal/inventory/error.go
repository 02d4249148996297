package inventory

import "errors"

var (
	ErrEntryNotFound     = errors.New("inventory entry not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
