package actor

import "context"

// Role is the closed set of identities the order core recognizes. Requests
// never carry a loose bag of user fields across this boundary; the middleware
// resolves the token into an Actor once and everything downstream matches on
// it.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAgent    Role = "agent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAgent:
		return true
	}
	return false
}

// Actor is the already-authenticated caller of a core operation.
type Actor struct {
	ID   string
	Role Role
}

type ctxKey string

const actorKey ctxKey = "actor"

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}
