package order

import (
	"time"

	"antaran-be/internal/actor"
)

type BusinessType string

const (
	BusinessHotel BusinessType = "hotel"
	BusinessStore BusinessType = "store"
)

type ItemKind string

const (
	ItemKindDish    ItemKind = "dish"
	ItemKindProduct ItemKind = "product"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Line        string      `json:"addressLine"`
	Coordinates Coordinates `json:"coordinates"`
}

type Item struct {
	Kind      ItemKind `json:"kind"`
	ItemID    string   `json:"itemId"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
}

// Order is the aggregate root. After placement only Status, DeliveryAgentID
// and the two PINs ever change, and each of the latter three is set exactly
// once.
type Order struct {
	ID              string        `json:"id"`
	BusinessType    BusinessType  `json:"businessType"`
	BusinessID      string        `json:"businessId"`
	CustomerID      string        `json:"customerId"`
	DeliveryAgentID *string       `json:"deliveryAgentId,omitempty"`
	Items           []Item        `json:"items"`
	Status          Status        `json:"status"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	VerificationPin *string       `json:"verificationPin,omitempty"`
	DeliveryPin     *string       `json:"deliveryPin,omitempty"`
	DeliveryAddress Address       `json:"deliveryAddress"`
	PickupAddress   Address       `json:"pickupAddress"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Claimable reports whether the order is waiting for a delivery agent.
func (o *Order) Claimable() bool {
	return o.Status == StatusReadyForPickup && o.DeliveryAgentID == nil
}

// ViewFor enforces the handoff PIN asymmetry: the pickup PIN never reaches
// the customer, the delivery PIN never reaches the agent or the vendor.
func (o *Order) ViewFor(role actor.Role) *Order {
	shaped := *o
	switch role {
	case actor.RoleCustomer:
		shaped.VerificationPin = nil
	case actor.RoleVendor, actor.RoleAgent:
		shaped.DeliveryPin = nil
	}
	return &shaped
}

func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}

// Draft is the placement request before the coordinator fills in identity,
// status and (for store orders) the pickup address.
type Draft struct {
	BusinessType    BusinessType  `json:"businessType"`
	BusinessID      string        `json:"businessId"`
	Items           []Item        `json:"items"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	DeliveryAddress Address       `json:"deliveryAddress"`
	// PickupAddress is honored for hotel orders only; store orders always
	// resolve it from the business directory.
	PickupAddress *Address `json:"pickupAddress,omitempty"`
}

type Filter struct {
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
	// BusinessID scopes vendor listings; ignored for customers and agents.
	BusinessID *string
}
