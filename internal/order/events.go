package order

import "context"

// Event names pushed through the notifier on committed writes.
const (
	EventOrderNew    = "order:new"
	EventOrderStatus = "order:status"
)

// Notifier fans a committed order change out to the interested rooms. It is
// fire-and-forget: implementations swallow their own failures, so the
// transactional core never blocks or fails on delivery.
type Notifier interface {
	OrderEvent(ctx context.Context, o *Order, event string)
}

// NopNotifier is used where fan-out is irrelevant (migrations, tests).
type NopNotifier struct{}

func (NopNotifier) OrderEvent(ctx context.Context, o *Order, event string) {}
