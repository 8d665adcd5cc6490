package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type CitizenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, citizen *types.Citizen) (*types.Citizen, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Citizen, error)
	GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.Citizen, error)
	Update(ctx context.Context, tx *gorm.DB, citizen *types.Citizen) (*types.Citizen, error)
	IncrementReportsCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ApplyApproval(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int) error
	DeductPoints(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int) error
	TopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Citizen, error)
}

type citizenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCitizenRepo(db *gorm.DB, baseLog *logger.Logger) CitizenRepo {
	return &citizenRepo{db: db, log: baseLog.With("repo", "CitizenRepo")}
}

func (r *citizenRepo) Create(ctx context.Context, tx *gorm.DB, citizen *types.Citizen) (*types.Citizen, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(citizen).Error; err != nil {
		return nil, err
	}
	return citizen, nil
}

func (r *citizenRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Citizen, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Citizen
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *citizenRepo) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.Citizen, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Citizen
	if err := transaction.WithContext(ctx).
		Where("phone = ?", phone).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *citizenRepo) Update(ctx context.Context, tx *gorm.DB, citizen *types.Citizen) (*types.Citizen, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Save(citizen).Error; err != nil {
		return nil, err
	}
	return citizen, nil
}

func (r *citizenRepo) IncrementReportsCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Citizen{}).
		Where("id = ?", id).
		UpdateColumn("reports_count", gorm.Expr("reports_count + 1")).Error
}

// ApplyApproval bumps the approved counter and credits points in one
// statement so counters cannot drift from the ledger.
func (r *citizenRepo) ApplyApproval(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Citizen{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"approved_reports": gorm.Expr("approved_reports + 1"),
			"points_earned":    gorm.Expr("points_earned + ?", points),
			"total_points":     gorm.Expr("total_points + ?", points),
		}).Error
}

// DeductPoints debits a redemption. The guard in the WHERE clause makes
// overdraw impossible even under concurrent redemptions; callers must
// check RowsAffected.
func (r *citizenRepo) DeductPoints(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Citizen{}).
		Where("id = ? AND total_points >= ?", id, points).
		UpdateColumns(map[string]interface{}{
			"points_redeemed": gorm.Expr("points_redeemed + ?", points),
			"total_points":    gorm.Expr("total_points - ?", points),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *citizenRepo) TopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Citizen, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	// Citizens in anonymous mode opted out of public rankings.
	var results []*types.Citizen
	if err := transaction.WithContext(ctx).
		Where("is_anonymous_mode = ?", false).
		Order("total_points DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
