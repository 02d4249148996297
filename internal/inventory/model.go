package inventory

import "time"

// Entry is the per (store, product) quantity counter. Quantity is decremented
// at order placement and never allowed below zero.
type Entry struct {
	StoreID   string
	ProductID string
	Quantity  int
	UnitPrice float64
	UpdatedAt time.Time
}
