package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// FeedbackFilter narrows feedback listings for the police queue and the
// submitter's own history.
type FeedbackFilter struct {
	CitizenID    *uuid.UUID
	UserID       *uuid.UUID
	ReportID     *uint
	FeedbackType string
	Category     string
	Status       string
	Priority     string
	AssignedToID *uuid.UUID
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

type FeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, fb *types.Feedback) (*types.Feedback, error)
	// GetByID loads one feedback with its responses. With publicOnly set,
	// internal responses are filtered out.
	GetByID(ctx context.Context, tx *gorm.DB, id uint, publicOnly bool) (*types.Feedback, error)
	Update(ctx context.Context, tx *gorm.DB, fb *types.Feedback) (*types.Feedback, error)
	List(ctx context.Context, tx *gorm.DB, filter FeedbackFilter, publicOnly bool) ([]*types.Feedback, error)
	AddResponse(ctx context.Context, tx *gorm.DB, resp *types.FeedbackResponse) (*types.FeedbackResponse, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) Create(ctx context.Context, tx *gorm.DB, fb *types.Feedback) (*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

func (r *feedbackRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint, publicOnly bool) (*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx)
	if publicOnly {
		query = query.Preload("Responses", "is_internal = ?", false)
	} else {
		query = query.Preload("Responses")
	}
	var result types.Feedback
	if err := query.
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *feedbackRepo) Update(ctx context.Context, tx *gorm.DB, fb *types.Feedback) (*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Omit("Responses").Save(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

func (r *feedbackRepo) List(ctx context.Context, tx *gorm.DB, filter FeedbackFilter, publicOnly bool) ([]*types.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Model(&types.Feedback{})
	if publicOnly {
		query = query.Preload("Responses", "is_internal = ?", false)
	} else {
		query = query.Preload("Responses")
	}
	if filter.CitizenID != nil {
		query = query.Where("citizen_id = ?", *filter.CitizenID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ReportID != nil {
		query = query.Where("report_id = ?", *filter.ReportID)
	}
	if filter.FeedbackType != "" {
		query = query.Where("feedback_type = ?", filter.FeedbackType)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var results []*types.Feedback
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *feedbackRepo) AddResponse(ctx context.Context, tx *gorm.DB, resp *types.FeedbackResponse) (*types.FeedbackResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(resp).Error; err != nil {
		return nil, err
	}
	return resp, nil
}
