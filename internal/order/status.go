package order

import "antaran-be/internal/actor"

type Status string

const (
	StatusPlaced           Status = "PLACED"
	StatusAcceptedByVendor Status = "ACCEPTED_BY_VENDOR"
	StatusPreparing        Status = "PREPARING"
	StatusReadyForPickup   Status = "READY_FOR_PICKUP"
	StatusAcceptedByAgent  Status = "ACCEPTED_BY_AGENT"
	StatusPickedUp         Status = "PICKED_UP"
	StatusOutForDelivery   Status = "OUT_FOR_DELIVERY"
	StatusDelivered        Status = "DELIVERED"
	StatusCancelled        Status = "CANCELLED"
	StatusRejected         Status = "REJECTED"
)

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok || s == StatusPlaced
}

func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// relationship is what must hold between the actor and the order, on top of
// the role, for a transition to be allowed.
type relationship int

const (
	relOwningVendor relationship = iota
	relPlacingCustomer
	relAssignedAgent
	relEligibleAgent
)

// rule is one row of the transition table: which prior statuses may reach the
// target, who may request it, and whether the move is gated behind a handoff
// PIN (in which case only the verification operations may commit it).
type rule struct {
	from     []Status
	role     actor.Role
	rel      relationship
	pinGated bool
}

func (r rule) allowsFrom(s Status) bool {
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}

// transitions is keyed by target status. Every reachable status except the
// initial PLACED has exactly one row; anything not in the table is not a
// legal target.
var transitions = map[Status]rule{
	StatusAcceptedByVendor: {
		from: []Status{StatusPlaced},
		role: actor.RoleVendor,
		rel:  relOwningVendor,
	},
	StatusPreparing: {
		from: []Status{StatusAcceptedByVendor},
		role: actor.RoleVendor,
		rel:  relOwningVendor,
	},
	StatusReadyForPickup: {
		from: []Status{StatusPreparing},
		role: actor.RoleVendor,
		rel:  relOwningVendor,
	},
	StatusAcceptedByAgent: {
		from: []Status{StatusReadyForPickup},
		role: actor.RoleAgent,
		rel:  relEligibleAgent,
	},
	StatusPickedUp: {
		from:     []Status{StatusAcceptedByAgent},
		role:     actor.RoleAgent,
		rel:      relAssignedAgent,
		pinGated: true,
	},
	StatusOutForDelivery: {
		from: []Status{StatusPickedUp},
		role: actor.RoleAgent,
		rel:  relAssignedAgent,
	},
	StatusDelivered: {
		from:     []Status{StatusOutForDelivery},
		role:     actor.RoleAgent,
		rel:      relAssignedAgent,
		pinGated: true,
	},
	StatusCancelled: {
		from: []Status{StatusPlaced, StatusAcceptedByVendor},
		role: actor.RoleCustomer,
		rel:  relPlacingCustomer,
	},
	StatusRejected: {
		from: []Status{StatusPlaced},
		role: actor.RoleVendor,
		rel:  relOwningVendor,
	},
}

func ruleFor(target Status) (rule, bool) {
	r, ok := transitions[target]
	return r, ok
}
