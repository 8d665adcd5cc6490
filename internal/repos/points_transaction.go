package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type PointsTransactionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, txn *types.PointsTransaction) (*types.PointsTransaction, error)
	GetByCitizenID(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, limit, offset int) ([]*types.PointsTransaction, error)
	SumByCitizenID(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID) (int64, error)
}

type pointsTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPointsTransactionRepo(db *gorm.DB, baseLog *logger.Logger) PointsTransactionRepo {
	return &pointsTransactionRepo{db: db, log: baseLog.With("repo", "PointsTransactionRepo")}
}

func (r *pointsTransactionRepo) Create(ctx context.Context, tx *gorm.DB, txn *types.PointsTransaction) (*types.PointsTransaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *pointsTransactionRepo) GetByCitizenID(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, limit, offset int) ([]*types.PointsTransaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var results []*types.PointsTransaction
	if err := transaction.WithContext(ctx).
		Where("citizen_id = ?", citizenID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SumByCitizenID replays the ledger. Deltas are stored signed, so the
// balance is a plain sum.
func (r *pointsTransactionRepo) SumByCitizenID(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sum *int64
	if err := transaction.WithContext(ctx).
		Model(&types.PointsTransaction{}).
		Select("SUM(points)").
		Where("citizen_id = ?", citizenID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
