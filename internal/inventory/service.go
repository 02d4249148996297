package inventory

import (
	"context"
	"errors"

	"antaran-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetEntry(ctx context.Context, storeID, productID string) (*Entry, error)
	Stock(ctx context.Context, storeID, productID string, quantity int, unitPrice float64) error
}

type service struct {
	ledger Ledger
}

func NewService(ledger Ledger) Service {
	return &service{ledger: ledger}
}

func (s *service) GetEntry(ctx context.Context, storeID, productID string) (*Entry, error) {
	return s.ledger.Get(ctx, storeID, productID)
}

// Stock seeds or replaces an entry. Restocking after sales sits outside the
// order core; this exists so stores can be stocked at all.
func (s *service) Stock(ctx context.Context, storeID, productID string, quantity int, unitPrice float64) error {
	if storeID == "" || productID == "" {
		return errors.New("store and product are required")
	}
	if quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if unitPrice < 0 {
		return errors.New("unit price must not be negative")
	}

	err := s.ledger.Upsert(ctx, &Entry{
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("inventory stocked",
		zap.String("store_id", storeID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return nil
}
