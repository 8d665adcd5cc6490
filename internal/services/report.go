package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type ReportConfig struct {
	MaxReportsPerDay int
}

func ReportConfigFromEnv() ReportConfig {
	return ReportConfig{
		MaxReportsPerDay: envutil.Int("MAX_REPORTS_PER_DAY", 50),
	}
}

// SubmitReportParams carries a pre-authenticated citizen submission.
type SubmitReportParams struct {
	CitizenID       uuid.UUID
	ViolationType   string
	CoReportedTypes []string
	Description     string
	VehicleNumber   string
	VehicleType     string
	VehicleColor    string
	Latitude        float64
	Longitude       float64
	Address         string
	City            string
	District        string
	State           string
	Pincode         string
	OccurredAt      time.Time
	MediaURLs       []string
}

type ReportService interface {
	Submit(ctx context.Context, params SubmitReportParams) (*types.ViolationReport, error)
	GetByID(ctx context.Context, id uint) (*types.ViolationReport, error)
	List(ctx context.Context, filter repos.ReportFilter) ([]*types.ViolationReport, error)
	Timeline(ctx context.Context, reportID uint) ([]*types.ReportEvent, error)
	GroupMembers(ctx context.Context, groupID uint) ([]*types.ViolationReport, error)
	AttachMedia(ctx context.Context, citizenID uuid.UUID, reportID uint, urls []string) (*types.ViolationReport, error)
}

type reportService struct {
	db          *gorm.DB
	reportRepo  repos.ViolationReportRepo
	citizenRepo repos.CitizenRepo
	duplicates  DuplicateService
	events      ReportEventService
	cfg         ReportConfig
	log         *logger.Logger
}

func NewReportService(
	db *gorm.DB,
	reportRepo repos.ViolationReportRepo,
	citizenRepo repos.CitizenRepo,
	duplicates DuplicateService,
	events ReportEventService,
	cfg ReportConfig,
	baseLog *logger.Logger,
) ReportService {
	return &reportService{
		db:          db,
		reportRepo:  reportRepo,
		citizenRepo: citizenRepo,
		duplicates:  duplicates,
		events:      events,
		cfg:         cfg,
		log:         baseLog.With("service", "ReportService"),
	}
}

func (s *reportService) validate(params *SubmitReportParams) error {
	if !types.ValidViolationType(params.ViolationType) {
		return apierr.BadRequest("invalid_violation_type",
			fmt.Errorf("unknown violation type %q", params.ViolationType))
	}
	seen := map[string]bool{params.ViolationType: true}
	deduped := params.CoReportedTypes[:0]
	for _, co := range params.CoReportedTypes {
		if !types.ValidViolationType(co) {
			return apierr.BadRequest("invalid_violation_type",
				fmt.Errorf("unknown co-reported violation type %q", co))
		}
		if seen[co] {
			continue
		}
		seen[co] = true
		deduped = append(deduped, co)
	}
	params.CoReportedTypes = deduped
	if params.Latitude < -90 || params.Latitude > 90 {
		return apierr.BadRequest("invalid_coordinates",
			fmt.Errorf("latitude %f out of range", params.Latitude))
	}
	if params.Longitude < -180 || params.Longitude > 180 {
		return apierr.BadRequest("invalid_coordinates",
			fmt.Errorf("longitude %f out of range", params.Longitude))
	}
	if params.OccurredAt.IsZero() {
		params.OccurredAt = time.Now()
	}
	if params.OccurredAt.After(time.Now().Add(5 * time.Minute)) {
		return apierr.BadRequest("invalid_timestamp",
			errors.New("incident time cannot be in the future"))
	}
	return nil
}

// Submit runs the whole submission as one unit of work: daily-cap
// check, duplicate decision, report insert, counter bump, and the
// REPORT_SUBMITTED event either all land or none do.
func (s *reportService) Submit(ctx context.Context, params SubmitReportParams) (*types.ViolationReport, error) {
	if err := s.validate(&params); err != nil {
		return nil, err
	}
	if _, err := s.citizenRepo.GetByID(ctx, nil, params.CitizenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("citizen")
		}
		return nil, err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	count, err := s.reportRepo.CountByCitizenSince(ctx, nil, params.CitizenID, startOfDay)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.cfg.MaxReportsPerDay) {
		return nil, apierr.RateLimited(
			fmt.Sprintf("daily report limit of %d reached", s.cfg.MaxReportsPerDay))
	}

	var report *types.ViolationReport
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draft := &types.ViolationReport{
			CitizenID:     params.CitizenID,
			ViolationType: params.ViolationType,
			Description:   params.Description,
			VehicleNumber: params.VehicleNumber,
			VehicleType:   params.VehicleType,
			VehicleColor:  params.VehicleColor,
			Latitude:      params.Latitude,
			Longitude:     params.Longitude,
			Address:       params.Address,
			City:          params.City,
			District:      params.District,
			State:         params.State,
			Pincode:       params.Pincode,
			OccurredAt:    params.OccurredAt,
			Status:        types.StatusPending,
		}
		if len(params.CoReportedTypes) > 0 {
			raw, err := json.Marshal(params.CoReportedTypes)
			if err != nil {
				return err
			}
			draft.CoReportedTypes = datatypes.JSON(raw)
		}
		if len(params.MediaURLs) > 0 {
			raw, err := json.Marshal(params.MediaURLs)
			if err != nil {
				return err
			}
			draft.MediaURLs = datatypes.JSON(raw)
		}

		decision, err := s.duplicates.Evaluate(ctx, tx, draft)
		if err != nil {
			return err
		}
		draft.IsDuplicate = decision.IsDuplicate
		draft.DuplicateGroupID = decision.GroupID
		draft.ConfidenceScore = decision.ConfidenceScore

		if _, err := s.reportRepo.Create(ctx, tx, draft); err != nil {
			return err
		}
		if err := s.citizenRepo.IncrementReportsCount(ctx, tx, params.CitizenID); err != nil {
			return err
		}

		meta := map[string]interface{}{
			"violation_type": draft.ViolationType,
			"is_duplicate":   draft.IsDuplicate,
		}
		if decision.ConfidenceScore != nil {
			meta["confidence_score"] = *decision.ConfidenceScore
		}
		if decision.GroupID != nil {
			meta["duplicate_group_id"] = *decision.GroupID
		}
		actorID := params.CitizenID
		if _, err := s.events.Log(ctx, tx, LogEventParams{
			ReportID:    draft.ID,
			EventType:   types.EventReportSubmitted,
			Title:       "Report submitted",
			Description: fmt.Sprintf("%s reported near %s", draft.ViolationType, draft.Address),
			Metadata:    meta,
			ActorID:     &actorID,
			ActorRole:   "CITIZEN",
		}); err != nil {
			return err
		}

		report = draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("report submitted",
		"report_id", report.ID,
		"citizen_id", report.CitizenID.String(),
		"violation_type", report.ViolationType,
		"is_duplicate", report.IsDuplicate,
	)
	return report, nil
}

func (s *reportService) GetByID(ctx context.Context, id uint) (*types.ViolationReport, error) {
	report, err := s.reportRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("report")
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, filter repos.ReportFilter) ([]*types.ViolationReport, error) {
	return s.reportRepo.List(ctx, nil, filter)
}

func (s *reportService) Timeline(ctx context.Context, reportID uint) ([]*types.ReportEvent, error) {
	if _, err := s.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	return s.events.Timeline(ctx, reportID)
}

func (s *reportService) GroupMembers(ctx context.Context, groupID uint) ([]*types.ViolationReport, error) {
	return s.reportRepo.GroupMembers(ctx, nil, groupID)
}

// AttachMedia appends evidence URLs after submission and records the
// MEDIA_UPLOADED event. Only the reporting citizen may attach, and only
// before review completes.
func (s *reportService) AttachMedia(ctx context.Context, citizenID uuid.UUID, reportID uint, urls []string) (*types.ViolationReport, error) {
	if len(urls) == 0 {
		return nil, apierr.BadRequest("no_media", errors.New("no media urls supplied"))
	}
	var report *types.ViolationReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.reportRepo.GetByID(ctx, tx, reportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("report")
			}
			return err
		}
		if existing.CitizenID != citizenID {
			return apierr.New(403, "forbidden", errors.New("report belongs to another citizen"))
		}
		if existing.Status != types.StatusPending && existing.Status != types.StatusUnderReview {
			return apierr.New(409, "report_locked",
				fmt.Errorf("report in status %s no longer accepts media", existing.Status))
		}

		var merged []string
		if len(existing.MediaURLs) > 0 {
			if err := json.Unmarshal(existing.MediaURLs, &merged); err != nil {
				return err
			}
		}
		merged = append(merged, urls...)
		raw, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		existing.MediaURLs = datatypes.JSON(raw)

		if _, err := s.reportRepo.Update(ctx, tx, existing); err != nil {
			return err
		}
		actorID := citizenID
		if _, err := s.events.Log(ctx, tx, LogEventParams{
			ReportID:  reportID,
			EventType: types.EventMediaUploaded,
			Title:     "Evidence added",
			Metadata:  map[string]interface{}{"count": len(urls)},
			ActorID:   &actorID,
			ActorRole: "CITIZEN",
		}); err != nil {
			return err
		}
		report = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
