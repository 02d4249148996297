package order

import (
	"errors"
	"fmt"

	"antaran-be/internal/inventory"
)

var (
	ErrValidation        = errors.New("invalid order draft")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidPin        = errors.New("invalid verification pin")
	ErrAgentNotEligible  = errors.New("agent must be verified and online")
)

// InsufficientStockError names the line item that sank the placement. The
// whole transaction is rolled back when it is returned.
type InsufficientStockError struct {
	ItemID string
	Name   string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (%s)", e.Name, e.ItemID)
}

func (e *InsufficientStockError) Unwrap() error {
	return inventory.ErrInsufficientStock
}
