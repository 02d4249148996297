package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Reserve(ctx context.Context, tx *sql.Tx, storeID, productID string, qty int) error {
	args := m.Called(ctx, tx, storeID, productID, qty)
	return args.Error(0)
}

func (m *MockLedger) Get(ctx context.Context, storeID, productID string) (*Entry, error) {
	args := m.Called(ctx, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entry), args.Error(1)
}

func (m *MockLedger) Upsert(ctx context.Context, entry *Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func TestService_Stock(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		ledger := new(MockLedger)
		svc := NewService(ledger)

		ledger.On("Upsert", ctx, &Entry{
			StoreID:   "store-1",
			ProductID: "prod-1",
			Quantity:  10,
			UnitPrice: 12000.0,
		}).Return(nil)

		err := svc.Stock(ctx, "store-1", "prod-1", 10, 12000.0)
		assert.NoError(t, err)
		ledger.AssertExpectations(t)
	})

	t.Run("MissingIDs", func(t *testing.T) {
		svc := NewService(new(MockLedger))

		err := svc.Stock(ctx, "", "prod-1", 10, 12000.0)
		assert.Error(t, err)
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		svc := NewService(new(MockLedger))

		err := svc.Stock(ctx, "store-1", "prod-1", -1, 12000.0)
		assert.Error(t, err)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		svc := NewService(new(MockLedger))

		err := svc.Stock(ctx, "store-1", "prod-1", 1, -5)
		assert.Error(t, err)
	})

	t.Run("LedgerError", func(t *testing.T) {
		ledger := new(MockLedger)
		svc := NewService(ledger)

		ledger.On("Upsert", ctx, mock.Anything).Return(errors.New("db error"))

		err := svc.Stock(ctx, "store-1", "prod-1", 10, 12000.0)
		assert.Error(t, err)
	})
}

func TestService_GetEntry(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	svc := NewService(ledger)

	ledger.On("Get", ctx, "store-1", "prod-1").Return(&Entry{Quantity: 5}, nil)

	e, err := svc.GetEntry(ctx, "store-1", "prod-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, e.Quantity)
}
