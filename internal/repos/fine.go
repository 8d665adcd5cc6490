package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type FineRepo interface {
	Create(ctx context.Context, tx *gorm.DB, fine *types.FineRecord) (*types.FineRecord, error)
	GetByReportID(ctx context.Context, tx *gorm.DB, reportID uint) (*types.FineRecord, error)
	ListByVehicle(ctx context.Context, tx *gorm.DB, vehicleNumber string) ([]*types.FineRecord, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error
}

type fineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFineRepo(db *gorm.DB, baseLog *logger.Logger) FineRepo {
	return &fineRepo{db: db, log: baseLog.With("repo", "FineRepo")}
}

func (r *fineRepo) Create(ctx context.Context, tx *gorm.DB, fine *types.FineRecord) (*types.FineRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(fine).Error; err != nil {
		return nil, err
	}
	return fine, nil
}

func (r *fineRepo) GetByReportID(ctx context.Context, tx *gorm.DB, reportID uint) (*types.FineRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.FineRecord
	if err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *fineRepo) ListByVehicle(ctx context.Context, tx *gorm.DB, vehicleNumber string) ([]*types.FineRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FineRecord
	if err := transaction.WithContext(ctx).
		Where("vehicle_number = ?", vehicleNumber).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *fineRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.FineRecord{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
