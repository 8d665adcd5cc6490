package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// CandidateQuery bounds the duplicate search around a new submission.
type CandidateQuery struct {
	ViolationType string
	Latitude      float64
	Longitude     float64
	OccurredAt    time.Time
	TimeWindow    time.Duration
	BBoxDelta     float64
	Limit         int
}

// ReportFilter narrows report listings for review queues and citizen views.
type ReportFilter struct {
	CitizenID     *uuid.UUID
	Status        string
	ViolationType string
	City          string
	VehicleNumber string
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
}

type ViolationReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (*types.ViolationReport, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.ViolationReport, error)
	Update(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (*types.ViolationReport, error)
	List(ctx context.Context, tx *gorm.DB, filter ReportFilter) ([]*types.ViolationReport, error)
	FindCandidates(ctx context.Context, tx *gorm.DB, q CandidateQuery) ([]*types.ViolationReport, error)
	SetDuplicateGroup(ctx context.Context, tx *gorm.DB, id uint, groupID uint) error
	CountByCitizenSince(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, since time.Time) (int64, error)
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	HasApprovedNearby(ctx context.Context, tx *gorm.DB, q CandidateQuery) (bool, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	GroupMembers(ctx context.Context, tx *gorm.DB, groupID uint) ([]*types.ViolationReport, error)
}

type violationReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViolationReportRepo(db *gorm.DB, baseLog *logger.Logger) ViolationReportRepo {
	return &violationReportRepo{db: db, log: baseLog.With("repo", "ViolationReportRepo")}
}

func (r *violationReportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (*types.ViolationReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *violationReportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.ViolationReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ViolationReport
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *violationReportRepo) Update(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (*types.ViolationReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Save(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *violationReportRepo) List(ctx context.Context, tx *gorm.DB, filter ReportFilter) ([]*types.ViolationReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Model(&types.ViolationReport{})
	if filter.CitizenID != nil {
		query = query.Where("citizen_id = ?", *filter.CitizenID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ViolationType != "" {
		query = query.Where("violation_type = ?", filter.ViolationType)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.VehicleNumber != "" {
		query = query.Where("upper(vehicle_number) = ?", strings.ToUpper(filter.VehicleNumber))
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
	var results []*types.ViolationReport
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindCandidates returns recent reports of the same violation type inside
// the time window and coordinate bounding box, newest first. Rejected
// reports never anchor a duplicate group.
func (r *violationReportRepo) FindCandidates(ctx context.Context, tx *gorm.DB, q CandidateQuery) ([]*types.ViolationReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}
	var results []*types.ViolationReport
	if err := transaction.WithContext(ctx).
		Where("violation_type = ?", q.ViolationType).
		Where("occurred_at BETWEEN ? AND ?", q.OccurredAt.Add(-q.TimeWindow), q.OccurredAt.Add(q.TimeWindow)).
		Where("latitude BETWEEN ? AND ?", q.Latitude-q.BBoxDelta, q.Latitude+q.BBoxDelta).
		Where("longitude BETWEEN ? AND ?", q.Longitude-q.BBoxDelta, q.Longitude+q.BBoxDelta).
		Where("status <> ?", types.StatusRejected).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *violationReportRepo) SetDuplicateGroup(ctx context.Context, tx *gorm.DB, id uint, groupID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ViolationReport{}).
		Where("id = ? AND duplicate_group_id IS NULL", id).
		UpdateColumn("duplicate_group_id", groupID).Error
}

func (r *violationReportRepo) CountByCitizenSince(ctx context.Context, tx *gorm.DB, citizenID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ViolationReport{}).
		Where("citizen_id = ? AND created_at >= ?", citizenID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *violationReportRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ViolationReport{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasApprovedNearby reports whether an approved report of the same type
// already exists inside the window and box. Used for the first-reporter
// bonus check.
func (r *violationReportRepo) HasApprovedNearby(ctx context.Context, tx *gorm.DB, q CandidateQuery) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ViolationReport{}).
		Where("violation_type = ?", q.ViolationType).
		Where("status = ?", types.StatusApproved).
		Where("occurred_at BETWEEN ? AND ?", q.OccurredAt.Add(-q.TimeWindow), q.OccurredAt.Add(q.TimeWindow)).
		Where("latitude BETWEEN ? AND ?", q.Latitude-q.BBoxDelta, q.Latitude+q.BBoxDelta).
		Where("longitude BETWEEN ? AND ?", q.Longitude-q.BBoxDelta, q.Longitude+q.BBoxDelta).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *violationReportRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := transaction.WithContext(ctx).
		Model(&types.ViolationReport{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}

func (r *violationReportRepo) GroupMembers(ctx context.Context, tx *gorm.DB, groupID uint) ([]*types.ViolationReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ViolationReport
	if err := transaction.WithContext(ctx).
		Where("duplicate_group_id = ? OR id = ?", groupID, groupID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
