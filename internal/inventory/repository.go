package inventory

import (
	"context"
	"database/sql"

	"antaran-be/internal/logger"

	"go.uber.org/zap"
)

// Ledger records stock per (store, product). Reserve runs on the caller's
// transaction so a placement that fails on a later line item rolls every
// decrement back; the ledger itself never commits.
type Ledger interface {
	Reserve(ctx context.Context, tx *sql.Tx, storeID, productID string, qty int) error
	Get(ctx context.Context, storeID, productID string) (*Entry, error)
	Upsert(ctx context.Context, entry *Entry) error
}

type ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) Ledger {
	return &ledger{db: db}
}

// Reserve performs the conditional decrement. The quantity guard in the WHERE
// clause is what closes the concurrent double-spend: two placements racing on
// the same entry serialize on the row and the loser sees zero rows affected.
func (l *ledger) Reserve(ctx context.Context, tx *sql.Tx, storeID, productID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_entries
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE store_id = $1 AND product_id = $2 AND quantity >= $3
	`, storeID, productID, qty)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Zero rows: either the entry does not exist or stock is short.
	var current int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity FROM inventory_entries
		WHERE store_id = $1 AND product_id = $2
	`, storeID, productID).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrEntryNotFound
	}
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("stock reservation rejected",
		zap.String("store_id", storeID),
		zap.String("product_id", productID),
		zap.Int("requested", qty),
		zap.Int("available", current),
	)
	return ErrInsufficientStock
}

func (l *ledger) Get(ctx context.Context, storeID, productID string) (*Entry, error) {
	var e Entry
	err := l.db.QueryRowContext(ctx, `
		SELECT store_id, product_id, quantity, unit_price, updated_at
		FROM inventory_entries
		WHERE store_id = $1 AND product_id = $2
	`, storeID, productID).Scan(&e.StoreID, &e.ProductID, &e.Quantity, &e.UnitPrice, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert creates the entry lazily on first stocking and replaces quantity and
// price on restock.
func (l *ledger) Upsert(ctx context.Context, entry *Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO inventory_entries (store_id, product_id, quantity, unit_price, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price, updated_at = NOW()
	`, entry.StoreID, entry.ProductID, entry.Quantity, entry.UnitPrice)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to upsert inventory entry",
			zap.String("store_id", entry.StoreID),
			zap.String("product_id", entry.ProductID),
			zap.Error(err),
		)
	}
	return err
}
