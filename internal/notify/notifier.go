package notify

import (
	"context"

	"antaran-be/internal/actor"
	"antaran-be/internal/logger"
	"antaran-be/internal/metrics"
	"antaran-be/internal/order"

	"go.uber.org/zap"
)

// Notifier derives the rooms interested in an order and pushes the event to
// each, with the payload shaped per viewer so PINs only travel to the side of
// the handoff allowed to see them. Publish failures are logged and counted but
// never surfaced: persisted state is the source of truth and a dropped event
// costs at most a client refresh.
type Notifier struct {
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

var _ order.Notifier = (*Notifier)(nil)

type target struct {
	room string
	view *order.Order
}

func (n *Notifier) OrderEvent(ctx context.Context, o *order.Order, event string) {
	targets := []target{
		{CustomerRoom(o.CustomerID), o.ViewFor(actor.RoleCustomer)},
		{BusinessRoom(o.BusinessID), o.ViewFor(actor.RoleVendor)},
	}

	if o.DeliveryAgentID != nil {
		targets = append(targets, target{AgentRoom(*o.DeliveryAgentID), o.ViewFor(actor.RoleAgent)})
	}

	// Orders waiting for an agent are broadcast to the shared claiming room.
	if o.Claimable() {
		targets = append(targets, target{RoomOnlineAgents, o.ViewFor(actor.RoleAgent)})
	}

	log := logger.FromCtx(ctx)
	for _, target := range targets {
		if err := n.pub.Publish(ctx, target.room, event, target.view); err != nil {
			metrics.PublishFailures.Inc()
			log.Warn("failed to publish order event",
				zap.String("room", target.room),
				zap.String("event", event),
				zap.String("order_id", o.ID),
				zap.Error(err),
			)
		}
	}
}
