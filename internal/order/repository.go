package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"antaran-be/internal/inventory"
	"antaran-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)

	// UpdateStatus applies a plain transition conditioned on the expected
	// prior status; a stale prior state yields ErrInvalidTransition.
	UpdateStatus(ctx context.Context, orderID string, from, to Status) error
	MarkReadyForPickup(ctx context.Context, orderID, pin string) error
	AssignAgent(ctx context.Context, orderID, agentID string) error
	MarkPickedUp(ctx context.Context, orderID, agentID, pin string) error
	MarkOutForDelivery(ctx context.Context, orderID, agentID, pin string) error
	MarkDelivered(ctx context.Context, orderID, agentID, pin string) error

	ListByCustomer(ctx context.Context, customerID string, f *Filter, limit, offset int32) ([]*Order, error)
	ListByBusiness(ctx context.Context, businessID string, f *Filter, limit, offset int32) ([]*Order, error)
	ListByAgent(ctx context.Context, agentID string, f *Filter, limit, offset int32) ([]*Order, error)
	ListClaimable(ctx context.Context) ([]*Order, error)
}

type repository struct {
	db     *sql.DB
	ledger inventory.Ledger
}

func NewRepository(db *sql.DB, ledger inventory.Ledger) Repository {
	return &repository{db: db, ledger: ledger}
}

const orderColumns = `
	id, business_type, business_id, customer_id, delivery_agent_id,
	status, payment_method, verification_pin, delivery_pin,
	delivery_address_line, delivery_lat, delivery_lng,
	pickup_address_line, pickup_lat, pickup_lng,
	created_at, updated_at`

// CreateOrderTx is the one multi-statement atomic unit in the system: stock
// reservation for every product line and the order insert commit together or
// not at all.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Reserve stock for store orders. First shortfall aborts everything.
	if o.BusinessType == BusinessStore {
		for _, item := range o.Items {
			if item.Kind != ItemKindProduct {
				continue
			}
			err := r.ledger.Reserve(ctx, tx, o.BusinessID, item.ItemID, item.Quantity)
			if errors.Is(err, inventory.ErrInsufficientStock) {
				return &InsufficientStockError{ItemID: item.ItemID, Name: item.Name}
			}
			if errors.Is(err, inventory.ErrEntryNotFound) {
				return fmt.Errorf("product %s: %w", item.ItemID, ErrNotFound)
			}
			if err != nil {
				return err
			}
		}
	}

	// 2. Persist the order inside the same unit.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, business_type, business_id, customer_id,
			status, payment_method,
			delivery_address_line, delivery_lat, delivery_lng,
			pickup_address_line, pickup_lat, pickup_lng,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
	`,
		o.ID,
		o.BusinessType,
		o.BusinessID,
		o.CustomerID,
		o.Status,
		o.PaymentMethod,
		o.DeliveryAddress.Line,
		o.DeliveryAddress.Coordinates.Lat,
		o.DeliveryAddress.Coordinates.Lng,
		o.PickupAddress.Line,
		o.PickupAddress.Coordinates.Lat,
		o.PickupAddress.Coordinates.Lng,
		o.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for pos, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, kind, item_id, name, quantity, unit_price, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, o.ID, item.Kind, item.ItemID, item.Name, item.Quantity, item.UnitPrice, pos)
		if err != nil {
			log.Error("failed to insert order item", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE id = $1`, orderID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to fetch order", zap.Error(err))
		return nil, err
	}

	items, err := r.fetchItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, orderID, from, to)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status", zap.Error(err))
		return err
	}
	return oneRowOr(res, ErrInvalidTransition)
}

// MarkReadyForPickup sets the pickup PIN together with the status change.
// COALESCE keeps an already generated PIN, so a retried transition can never
// hand out a second one.
func (r *repository) MarkReadyForPickup(ctx context.Context, orderID, pin string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, verification_pin = COALESCE(verification_pin, $4), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, orderID, StatusPreparing, StatusReadyForPickup, pin)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to mark order ready for pickup", zap.Error(err))
		return err
	}
	return oneRowOr(res, ErrInvalidTransition)
}

// AssignAgent claims the order for an agent. The delivery_agent_id IS NULL
// guard closes the double-claim race: of two concurrent claims exactly one
// update matches a row.
func (r *repository) AssignAgent(ctx context.Context, orderID, agentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, delivery_agent_id = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND delivery_agent_id IS NULL
	`, orderID, StatusReadyForPickup, StatusAcceptedByAgent, agentID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to assign agent", zap.Error(err))
		return err
	}
	return oneRowOr(res, ErrInvalidTransition)
}

// MarkPickedUp commits the vendor→agent handoff. The PIN sits in the WHERE
// clause so a failed check cannot mutate status even if the snapshot the
// service validated against has gone stale.
func (r *repository) MarkPickedUp(ctx context.Context, orderID, agentID, pin string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND delivery_agent_id = $3 AND verification_pin = $5
	`, orderID, StatusAcceptedByAgent, agentID, StatusPickedUp, pin)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to mark order picked up", zap.Error(err))
		return err
	}
	return oneRowOr(res, ErrInvalidTransition)
}

// MarkOutForDelivery generates the delivery PIN at entry, same COALESCE
// guard as the pickup PIN.
func (r *repository) MarkOutForDelivery(ctx context.Context, orderID, agentID, pin string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $4, delivery_pin = COALESCE(delivery_pin, $5), updated_at = NOW()
		WHERE id = $1 AND status = $2 AND delivery_agent_id = $3
	`, orderID, StatusPickedUp, agentID, StatusOutForDelivery, pin)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to mark order out for delivery", zap.Error(err))
		return err
	}
	return oneRowOr(res, ErrInvalidTransition)
}

func (r *repository) MarkDelivered(ctx context.Context, orderID, agentID, pin string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND delivery_agent_id = $3 AND delivery_pin = $5
	`, orderID, StatusOutForDelivery, agentID, StatusDelivered, pin)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to mark order delivered", zap.Error(err))
		return err
	}
	return oneRowOr(res, ErrInvalidTransition)
}

func (r *repository) ListByCustomer(ctx context.Context, customerID string, f *Filter, limit, offset int32) ([]*Order, error) {
	return r.listOrders(ctx, "customer_id = $1", customerID, f, limit, offset)
}

func (r *repository) ListByBusiness(ctx context.Context, businessID string, f *Filter, limit, offset int32) ([]*Order, error) {
	return r.listOrders(ctx, "business_id = $1", businessID, f, limit, offset)
}

func (r *repository) ListByAgent(ctx context.Context, agentID string, f *Filter, limit, offset int32) ([]*Order, error) {
	return r.listOrders(ctx, "delivery_agent_id = $1", agentID, f, limit, offset)
}

func (r *repository) ListClaimable(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+orderColumns+`
		FROM orders
		WHERE status = $1 AND delivery_agent_id IS NULL
		ORDER BY created_at ASC
	`, StatusReadyForPickup)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query claimable orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.collect(ctx, rows)
}

func (r *repository) listOrders(ctx context.Context, where string, arg any, f *Filter, limit, offset int32) ([]*Order, error) {
	log := logger.FromCtx(ctx)

	query := `SELECT` + orderColumns + ` FROM orders WHERE ` + where
	args := []any{arg}
	argIndex := 2

	if f != nil {
		if f.Status != nil {
			query += fmt.Sprintf(" AND status = $%d", argIndex)
			args = append(args, *f.Status)
			argIndex++
		}
		if f.DateFrom != nil {
			query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
			args = append(args, *f.DateFrom)
			argIndex++
		}
		if f.DateTo != nil {
			query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
			args = append(args, *f.DateTo)
			argIndex++
		}
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	log.Debug("executing list orders query",
		zap.String("query", query),
		zap.Any("args", args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.collect(ctx, rows)
}

func (r *repository) collect(ctx context.Context, rows *sql.Rows) ([]*Order, error) {
	var orders []*Order
	var ids []string

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			logger.FromCtx(ctx).Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return orders, nil
}

func (r *repository) fetchItems(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, kind, item_id, name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]Item)
	for rows.Next() {
		var orderID string
		var it Item
		if err := rows.Scan(&orderID, &it.Kind, &it.ItemID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.BusinessType,
		&o.BusinessID,
		&o.CustomerID,
		&o.DeliveryAgentID,
		&o.Status,
		&o.PaymentMethod,
		&o.VerificationPin,
		&o.DeliveryPin,
		&o.DeliveryAddress.Line,
		&o.DeliveryAddress.Coordinates.Lat,
		&o.DeliveryAddress.Coordinates.Lng,
		&o.PickupAddress.Line,
		&o.PickupAddress.Coordinates.Lat,
		&o.PickupAddress.Coordinates.Lng,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func oneRowOr(res sql.Result, errNoMatch error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNoMatch
	}
	return nil
}
