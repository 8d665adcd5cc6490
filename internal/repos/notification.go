package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, n *types.Notification) (*types.Notification, error)
	ListByCitizenID(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, limit, offset int) ([]*types.Notification, error)
	Delete(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, id uint) error
	DeleteAllForCitizen(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(ctx context.Context, tx *gorm.DB, n *types.Notification) (*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepo) ListByCitizenID(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, limit, offset int) ([]*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var results []*types.Notification
	if err := transaction.WithContext(ctx).
		Where("citizen_id = ?", citizenID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Delete removes a single notification. Reading a notification deletes it.
func (r *notificationRepo) Delete(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, id uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND citizen_id = ?", id, citizenID).
		Delete(&types.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) DeleteAllForCitizen(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("citizen_id = ?", citizenID).
		Delete(&types.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&types.Notification{})
	return res.RowsAffected, res.Error
}
