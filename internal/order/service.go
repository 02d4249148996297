package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"antaran-be/internal/actor"
	"antaran-be/internal/directory"
	"antaran-be/internal/logger"
	"antaran-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, act actor.Actor, draft *Draft) (*Order, error)
	GetOrder(ctx context.Context, act actor.Actor, orderID string) (*Order, error)
	ListOrdersForActor(ctx context.Context, act actor.Actor, f *Filter, limit, page *int32) ([]*Order, error)
	Transition(ctx context.Context, act actor.Actor, orderID string, target Status) (*Order, error)
	VerifyPickup(ctx context.Context, act actor.Actor, orderID, pin string) (*Order, error)
	VerifyDelivery(ctx context.Context, act actor.Actor, orderID, pin string) (*Order, error)
	ListClaimableOrders(ctx context.Context) ([]*Order, error)
	ListOrdersForAgent(ctx context.Context, agentID string) ([]*Order, error)
}

type service struct {
	repo     Repository
	dir      directory.Repository
	notifier Notifier
}

func NewService(repo Repository, dir directory.Repository, notifier Notifier) Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &service{repo: repo, dir: dir, notifier: notifier}
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// PlaceOrder is the transaction coordinator entry point (§ placement): the
// draft is validated, store orders get their pickup address resolved from the
// business directory, and stock reservation plus persistence commit as one
// unit inside the repository.
func (s *service) PlaceOrder(ctx context.Context, act actor.Actor, draft *Draft) (*Order, error) {
	log := logger.FromCtx(ctx)

	if act.Role != actor.RoleCustomer {
		return nil, ErrUnauthorized
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	o := &Order{
		ID:              uuid.New().String(),
		BusinessType:    draft.BusinessType,
		BusinessID:      draft.BusinessID,
		CustomerID:      act.ID,
		Items:           draft.Items,
		Status:          StatusPlaced,
		PaymentMethod:   draft.PaymentMethod,
		DeliveryAddress: draft.DeliveryAddress,
		CreatedAt:       time.Now().UTC(),
	}
	o.UpdatedAt = o.CreatedAt

	switch draft.BusinessType {
	case BusinessStore:
		addr, err := s.dir.ResolveAddress(ctx, draft.BusinessID)
		if errors.Is(err, directory.ErrBusinessNotFound) {
			return nil, fmt.Errorf("business %s: %w", draft.BusinessID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		o.PickupAddress = Address{
			Line:        addr.Line,
			Coordinates: Coordinates{Lat: addr.Lat, Lng: addr.Lng},
		}
	case BusinessHotel:
		o.PickupAddress = *draft.PickupAddress
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			metrics.StockShortfalls.Inc()
			log.Info("order placement rejected on stock",
				zap.String("business_id", o.BusinessID),
				zap.String("item_id", stockErr.ItemID),
			)
		}
		metrics.OrdersRejected.Inc()
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("business_id", o.BusinessID),
		zap.String("customer_id", o.CustomerID),
		zap.Float64("total", o.Total()),
	)

	s.notifier.OrderEvent(ctx, o, EventOrderNew)
	return o, nil
}

func validateDraft(draft *Draft) error {
	if draft == nil {
		return ErrValidation
	}
	if draft.BusinessType != BusinessHotel && draft.BusinessType != BusinessStore {
		return fmt.Errorf("%w: unknown business type %q", ErrValidation, draft.BusinessType)
	}
	if draft.BusinessID == "" {
		return fmt.Errorf("%w: business id is required", ErrValidation)
	}
	if draft.PaymentMethod != PaymentCOD && draft.PaymentMethod != PaymentOnline {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, draft.PaymentMethod)
	}
	if draft.DeliveryAddress.Line == "" {
		return fmt.Errorf("%w: delivery address is required", ErrValidation)
	}
	if draft.BusinessType == BusinessHotel && (draft.PickupAddress == nil || draft.PickupAddress.Line == "") {
		return fmt.Errorf("%w: pickup address is required for hotel orders", ErrValidation)
	}
	if len(draft.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for _, item := range draft.Items {
		if item.Kind != ItemKindDish && item.Kind != ItemKindProduct {
			return fmt.Errorf("%w: unknown item kind %q", ErrValidation, item.Kind)
		}
		if item.ItemID == "" {
			return fmt.Errorf("%w: item id is required", ErrValidation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for %s", ErrValidation, item.ItemID)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: unit price must not be negative for %s", ErrValidation, item.ItemID)
		}
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, act actor.Actor, orderID string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.mayView(ctx, act, o)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}
	return shapeForViewer(o, act.Role), nil
}

func (s *service) mayView(ctx context.Context, act actor.Actor, o *Order) (bool, error) {
	switch act.Role {
	case actor.RoleCustomer:
		return act.ID == o.CustomerID, nil
	case actor.RoleAgent:
		if o.DeliveryAgentID != nil && *o.DeliveryAgentID == act.ID {
			return true, nil
		}
		// Unassigned agents may inspect orders waiting to be claimed.
		return o.Claimable(), nil
	case actor.RoleVendor:
		return s.isOwningVendor(ctx, act, o)
	}
	return false, nil
}

func (s *service) ListOrdersForActor(ctx context.Context, act actor.Actor, f *Filter, limit, page *int32) ([]*Order, error) {
	l, offset := pagination(limit, page)

	var (
		orders []*Order
		err    error
	)
	switch act.Role {
	case actor.RoleCustomer:
		orders, err = s.repo.ListByCustomer(ctx, act.ID, f, l, offset)
	case actor.RoleAgent:
		orders, err = s.repo.ListByAgent(ctx, act.ID, f, l, offset)
	case actor.RoleVendor:
		if f == nil || f.BusinessID == nil {
			return nil, fmt.Errorf("%w: business id filter is required for vendors", ErrValidation)
		}
		var ok bool
		ok, err = s.isVendorOfBusiness(ctx, act, *f.BusinessID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnauthorized
		}
		orders, err = s.repo.ListByBusiness(ctx, *f.BusinessID, f, l, offset)
	default:
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	return shapeAll(orders, act.Role), nil
}

// Transition applies one edge of the status graph. PIN-gated targets are not
// reachable here; VerifyPickup and VerifyDelivery are the only paths into
// PICKED_UP and DELIVERED.
func (s *service) Transition(ctx context.Context, act actor.Actor, orderID string, target Status) (*Order, error) {
	log := logger.FromCtx(ctx)

	r, ok := ruleFor(target)
	if !ok || r.pinGated {
		return nil, ErrInvalidTransition
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, act, o, r); err != nil {
		return nil, err
	}

	switch target {
	case StatusReadyForPickup:
		pin, err := generatePin()
		if err != nil {
			return nil, err
		}
		err = s.repo.MarkReadyForPickup(ctx, orderID, pin)
		if err != nil {
			return nil, err
		}
	case StatusAcceptedByAgent:
		if err := s.repo.AssignAgent(ctx, orderID, act.ID); err != nil {
			return nil, err
		}
	case StatusOutForDelivery:
		pin, err := generatePin()
		if err != nil {
			return nil, err
		}
		if err := s.repo.MarkOutForDelivery(ctx, orderID, act.ID, pin); err != nil {
			return nil, err
		}
	default:
		if err := s.repo.UpdateStatus(ctx, orderID, o.Status, target); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	metrics.TransitionsApplied.Inc()
	log.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", act.ID),
		zap.String("actor_role", string(act.Role)),
	)

	s.notifier.OrderEvent(ctx, updated, EventOrderStatus)
	return shapeForViewer(updated, act.Role), nil
}

// authorize checks one table row against the loaded snapshot: state first,
// then role, then the actor/order relationship. Nothing is written here.
func (s *service) authorize(ctx context.Context, act actor.Actor, o *Order, r rule) error {
	if !r.allowsFrom(o.Status) {
		return ErrInvalidTransition
	}
	if act.Role != r.role {
		return ErrUnauthorized
	}

	switch r.rel {
	case relOwningVendor:
		ok, err := s.isOwningVendor(ctx, act, o)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnauthorized
		}
	case relPlacingCustomer:
		if act.ID != o.CustomerID {
			return ErrUnauthorized
		}
	case relAssignedAgent:
		if o.DeliveryAgentID == nil || *o.DeliveryAgentID != act.ID {
			return ErrUnauthorized
		}
	case relEligibleAgent:
		if o.DeliveryAgentID != nil {
			return ErrInvalidTransition
		}
		agent, err := s.dir.GetAgent(ctx, act.ID)
		if errors.Is(err, directory.ErrAgentNotFound) {
			return ErrAgentNotEligible
		}
		if err != nil {
			return err
		}
		if !agent.Eligible() {
			return ErrAgentNotEligible
		}
	}
	return nil
}

func (s *service) isOwningVendor(ctx context.Context, act actor.Actor, o *Order) (bool, error) {
	switch o.BusinessType {
	case BusinessHotel:
		return s.dir.IsManagerOf(ctx, act.ID, o.BusinessID)
	case BusinessStore:
		return s.dir.IsOwnerOf(ctx, act.ID, o.BusinessID)
	}
	return false, nil
}

func (s *service) isVendorOfBusiness(ctx context.Context, act actor.Actor, businessID string) (bool, error) {
	ok, err := s.dir.IsManagerOf(ctx, act.ID, businessID)
	if err != nil || ok {
		return ok, err
	}
	return s.dir.IsOwnerOf(ctx, act.ID, businessID)
}

// VerifyPickup commits the vendor→agent handoff: correct pickup PIN from the
// assigned agent moves the order to PICKED_UP. A failed check leaves the
// order untouched.
func (s *service) VerifyPickup(ctx context.Context, act actor.Actor, orderID, pin string) (*Order, error) {
	return s.verifyHandoff(ctx, act, orderID, pin, StatusAcceptedByAgent, StatusPickedUp)
}

// VerifyDelivery commits the agent→customer handoff with the delivery PIN.
func (s *service) VerifyDelivery(ctx context.Context, act actor.Actor, orderID, pin string) (*Order, error) {
	return s.verifyHandoff(ctx, act, orderID, pin, StatusOutForDelivery, StatusDelivered)
}

func (s *service) verifyHandoff(ctx context.Context, act actor.Actor, orderID, pin string, from, to Status) (*Order, error) {
	log := logger.FromCtx(ctx)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if act.Role != actor.RoleAgent || o.DeliveryAgentID == nil || *o.DeliveryAgentID != act.ID {
		return nil, ErrUnauthorized
	}
	if o.Status != from {
		return nil, ErrInvalidTransition
	}

	expected := o.VerificationPin
	if to == StatusDelivered {
		expected = o.DeliveryPin
	}
	if expected == nil || pin == "" || pin != *expected {
		log.Info("handoff pin rejected",
			zap.String("order_id", orderID),
			zap.String("agent_id", act.ID),
			zap.String("target", string(to)),
		)
		return nil, ErrInvalidPin
	}

	// The PIN is re-checked inside the conditional update so verification and
	// transition commit together.
	if to == StatusDelivered {
		err = s.repo.MarkDelivered(ctx, orderID, act.ID, pin)
	} else {
		err = s.repo.MarkPickedUp(ctx, orderID, act.ID, pin)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	metrics.TransitionsApplied.Inc()
	log.Info("handoff verified",
		zap.String("order_id", orderID),
		zap.String("agent_id", act.ID),
		zap.String("status", string(updated.Status)),
	)

	s.notifier.OrderEvent(ctx, updated, EventOrderStatus)
	return shapeForViewer(updated, act.Role), nil
}

func (s *service) ListClaimableOrders(ctx context.Context) ([]*Order, error) {
	orders, err := s.repo.ListClaimable(ctx)
	if err != nil {
		return nil, err
	}
	return shapeAll(orders, actor.RoleAgent), nil
}

func (s *service) ListOrdersForAgent(ctx context.Context, agentID string) ([]*Order, error) {
	orders, err := s.repo.ListByAgent(ctx, agentID, nil, defaultLimit, 0)
	if err != nil {
		return nil, err
	}
	return shapeAll(orders, actor.RoleAgent), nil
}

func pagination(limit, page *int32) (int32, int32) {
	l := int32(defaultLimit)
	if limit != nil && *limit > 0 {
		l = *limit
	}
	if l > maxLimit {
		l = maxLimit
	}

	p := int32(1)
	if page != nil && *page > 0 {
		p = *page
	}
	return l, (p - 1) * l
}

func shapeForViewer(o *Order, role actor.Role) *Order {
	return o.ViewFor(role)
}

func shapeAll(orders []*Order, role actor.Role) []*Order {
	shaped := make([]*Order, 0, len(orders))
	for _, o := range orders {
		shaped = append(shaped, shapeForViewer(o, role))
	}
	return shaped
}
