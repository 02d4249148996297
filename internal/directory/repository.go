package directory

import (
	"context"
	"database/sql"

	"antaran-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	IsManagerOf(ctx context.Context, userID, businessID string) (bool, error)
	IsOwnerOf(ctx context.Context, userID, businessID string) (bool, error)
	GetBusiness(ctx context.Context, businessID string) (*Business, error)
	ResolveAddress(ctx context.Context, businessID string) (*Address, error)
	GetAgent(ctx context.Context, userID string) (*Agent, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) IsManagerOf(ctx context.Context, userID, businessID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM businesses
			WHERE id = $1 AND manager_id = $2 AND type = 'hotel'
		)
	`, businessID, userID).Scan(&ok)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to check hotel manager", zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (r *repository) IsOwnerOf(ctx context.Context, userID, businessID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM businesses
			WHERE id = $1 AND owner_id = $2 AND type = 'store'
		)
	`, businessID, userID).Scan(&ok)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to check store owner", zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (r *repository) GetBusiness(ctx context.Context, businessID string) (*Business, error) {
	var b Business
	err := r.db.QueryRowContext(ctx, `
		SELECT id, type, owner_id, manager_id, name, address_line, lat, lng
		FROM businesses
		WHERE id = $1
	`, businessID).Scan(
		&b.ID,
		&b.Type,
		&b.OwnerID,
		&b.ManagerID,
		&b.Name,
		&b.Address.Line,
		&b.Address.Lat,
		&b.Address.Lng,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to fetch business", zap.Error(err))
		return nil, err
	}
	return &b, nil
}

func (r *repository) ResolveAddress(ctx context.Context, businessID string) (*Address, error) {
	b, err := r.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &b.Address, nil
}

func (r *repository) GetAgent(ctx context.Context, userID string) (*Agent, error) {
	var a Agent
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, verification_status, is_online
		FROM agents
		WHERE user_id = $1
	`, userID).Scan(&a.UserID, &a.VerificationStatus, &a.IsOnline)
	if err == sql.ErrNoRows {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to fetch agent", zap.Error(err))
		return nil, err
	}
	return &a, nil
}
