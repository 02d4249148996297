package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_IsManagerOf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Manager", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("hotel-1", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.IsManagerOf(ctx, "user-1", "hotel-1")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotManager", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("hotel-1", "user-2").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.IsManagerOf(ctx, "user-2", "hotel-1")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnError(errors.New("db error"))

		_, err := repo.IsManagerOf(ctx, "user-1", "hotel-1")
		assert.Error(t, err)
	})
}

func TestRepository_IsOwnerOf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("store-1", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsOwnerOf(context.Background(), "owner-1", "store-1")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_GetBusiness(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "type", "owner_id", "manager_id", "name", "address_line", "lat", "lng",
		}).AddRow("store-1", "store", "owner-1", "", "Toko Berkah", "Jl. Melati 5", -6.2, 106.8)

		mock.ExpectQuery(`SELECT id, type, owner_id, manager_id, name, address_line, lat, lng FROM businesses`).
			WithArgs("store-1").
			WillReturnRows(rows)

		b, err := repo.GetBusiness(ctx, "store-1")
		require.NoError(t, err)
		assert.Equal(t, BusinessTypeStore, b.Type)
		assert.Equal(t, "Jl. Melati 5", b.Address.Line)
		assert.Equal(t, -6.2, b.Address.Lat)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, type, owner_id, manager_id, name, address_line, lat, lng FROM businesses`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetBusiness(ctx, "missing")
		assert.ErrorIs(t, err, ErrBusinessNotFound)
	})
}

func TestRepository_ResolveAddress(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "type", "owner_id", "manager_id", "name", "address_line", "lat", "lng",
	}).AddRow("store-1", "store", "owner-1", "", "Toko Berkah", "Jl. Melati 5", -6.2, 106.8)

	mock.ExpectQuery(`SELECT id, type, owner_id, manager_id, name, address_line, lat, lng FROM businesses`).
		WithArgs("store-1").
		WillReturnRows(rows)

	addr, err := repo.ResolveAddress(context.Background(), "store-1")
	require.NoError(t, err)
	assert.Equal(t, "Jl. Melati 5", addr.Line)
	assert.Equal(t, 106.8, addr.Lng)
}

func TestRepository_GetAgent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"user_id", "verification_status", "is_online"}).
			AddRow("agent-1", "verified", true)

		mock.ExpectQuery(`SELECT user_id, verification_status, is_online FROM agents`).
			WithArgs("agent-1").
			WillReturnRows(rows)

		a, err := repo.GetAgent(ctx, "agent-1")
		require.NoError(t, err)
		assert.True(t, a.Eligible())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT user_id, verification_status, is_online FROM agents`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		_, err := repo.GetAgent(ctx, "missing")
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})
}

func TestAgentEligible(t *testing.T) {
	cases := []struct {
		name     string
		agent    Agent
		eligible bool
	}{
		{"VerifiedOnline", Agent{VerificationStatus: VerificationVerified, IsOnline: true}, true},
		{"VerifiedOffline", Agent{VerificationStatus: VerificationVerified, IsOnline: false}, false},
		{"PendingOnline", Agent{VerificationStatus: VerificationPending, IsOnline: true}, false},
		{"RejectedOnline", Agent{VerificationStatus: VerificationRejected, IsOnline: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.eligible, tc.agent.Eligible())
		})
	}
}
