package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type ReportEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.ReportEvent) ([]*types.ReportEvent, error)
	GetByReportID(ctx context.Context, tx *gorm.DB, reportID uint) ([]*types.ReportEvent, error)
}

type reportEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportEventRepo(db *gorm.DB, baseLog *logger.Logger) ReportEventRepo {
	return &reportEventRepo{db: db, log: baseLog.With("repo", "ReportEventRepo")}
}

func (r *reportEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.ReportEvent) ([]*types.ReportEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return []*types.ReportEvent{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *reportEventRepo) GetByReportID(ctx context.Context, tx *gorm.DB, reportID uint) ([]*types.ReportEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ReportEvent
	if err := transaction.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
