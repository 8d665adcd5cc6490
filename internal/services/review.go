package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

type ReviewConfig struct {
	PointsPerApproved  int
	FirstReporterBonus int
	// Bonus eligibility reuses the duplicate search window over
	// approved reports only.
	TimeWindow time.Duration
	BBoxDelta  float64
}

func ReviewConfigFromEnv() ReviewConfig {
	return ReviewConfig{
		PointsPerApproved:  envutil.Int("POINTS_PER_APPROVED_REPORT", 100),
		FirstReporterBonus: envutil.Int("FIRST_REPORTER_BONUS", 50),
		TimeWindow:         time.Duration(envutil.Int("DUPLICATE_TIME_WINDOW_MINUTES", 30)) * time.Minute,
		BBoxDelta:          envutil.Float("DUPLICATE_BBOX_DELTA", 0.001),
	}
}

// allowedTransitions is the authoritative transition table. APPROVED,
// REJECTED, and DUPLICATE are terminal; in particular a report can
// never be approved twice, which would re-credit points.
var allowedTransitions = map[string][]string{
	types.StatusPending:     {types.StatusUnderReview, types.StatusApproved, types.StatusRejected, types.StatusDuplicate},
	types.StatusUnderReview: {types.StatusApproved, types.StatusRejected, types.StatusDuplicate},
	types.StatusApproved:    {},
	types.StatusRejected:    {},
	types.StatusDuplicate:   {},
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReviewDecision carries a police actor's verdict on a report.
type ReviewDecision struct {
	ReportID      uint
	ReviewerID    uuid.UUID
	TargetStatus  string
	Notes         string
	Severity      string
	ChallanNumber string
}

type ReviewService interface {
	Transition(ctx context.Context, decision ReviewDecision) (*types.ViolationReport, error)
	Queue(ctx context.Context, filter repos.ReportFilter) ([]*types.ViolationReport, error)
}

type reviewService struct {
	db          *gorm.DB
	reportRepo  repos.ViolationReportRepo
	citizenRepo repos.CitizenRepo
	points      PointsService
	events      ReportEventService
	notifier    Notifier
	cfg         ReviewConfig
	log         *logger.Logger
}

func NewReviewService(
	db *gorm.DB,
	reportRepo repos.ViolationReportRepo,
	citizenRepo repos.CitizenRepo,
	points PointsService,
	events ReportEventService,
	notifier Notifier,
	cfg ReviewConfig,
	baseLog *logger.Logger,
) ReviewService {
	return &reviewService{
		db:          db,
		reportRepo:  reportRepo,
		citizenRepo: citizenRepo,
		points:      points,
		events:      events,
		notifier:    notifier,
		cfg:         cfg,
		log:         baseLog.With("service", "ReviewService"),
	}
}

func (s *reviewService) Queue(ctx context.Context, filter repos.ReportFilter) ([]*types.ViolationReport, error) {
	if filter.Status == "" {
		filter.Status = types.StatusPending
	}
	return s.reportRepo.List(ctx, nil, filter)
}

// Transition drives the report lifecycle. The state change, citizen
// counters, ledger entry, and events commit atomically; notifications
// go out only after the commit and never fail the transition.
func (s *reviewService) Transition(ctx context.Context, decision ReviewDecision) (*types.ViolationReport, error) {
	if !types.ValidStatus(decision.TargetStatus) {
		return nil, apierr.BadRequest("invalid_status",
			fmt.Errorf("unknown status %q", decision.TargetStatus))
	}
	if decision.TargetStatus == types.StatusPending {
		return nil, apierr.BadRequest("invalid_status",
			errors.New("reports cannot be moved back to PENDING"))
	}
	if decision.Severity != "" && !types.ValidSeverity(decision.Severity) {
		return nil, apierr.BadRequest("invalid_severity",
			fmt.Errorf("unknown severity %q", decision.Severity))
	}

	var (
		report       *types.ViolationReport
		citizen      *types.Citizen
		pointsIssued int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.reportRepo.GetByID(ctx, tx, decision.ReportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("report")
			}
			return err
		}
		if !CanTransition(existing.Status, decision.TargetStatus) {
			return apierr.InvalidTransition(existing.Status, decision.TargetStatus)
		}
		previous := existing.Status

		now := time.Now()
		existing.Status = decision.TargetStatus
		existing.ReviewedByID = &decision.ReviewerID
		existing.ReviewedAt = &now
		if decision.Notes != "" {
			existing.ReviewNotes = decision.Notes
		}
		if decision.Severity != "" {
			existing.Severity = decision.Severity
		}
		if decision.ChallanNumber != "" {
			existing.ChallanIssued = true
			existing.ChallanNumber = decision.ChallanNumber
		}
		// A manual DUPLICATE verdict carries its meaning in the status
		// alone. IsDuplicate stays owned by the submission-time detector,
		// which always pairs it with a group id.

		if decision.TargetStatus == types.StatusApproved {
			pointsIssued, err = s.computeAward(ctx, tx, existing)
			if err != nil {
				return err
			}
			existing.PointsAwarded = pointsIssued
		}

		if _, err := s.reportRepo.Update(ctx, tx, existing); err != nil {
			return err
		}

		reviewerID := decision.ReviewerID
		if _, err := s.events.Log(ctx, tx, LogEventParams{
			ReportID:    existing.ID,
			EventType:   types.EventStatusUpdated,
			Title:       fmt.Sprintf("Status changed to %s", existing.Status),
			Description: decision.Notes,
			Metadata: map[string]interface{}{
				"from": previous,
				"to":   existing.Status,
			},
			ActorID:   &reviewerID,
			ActorRole: "POLICE",
		}); err != nil {
			return err
		}

		if decision.TargetStatus == types.StatusApproved {
			if _, err := s.points.AwardInTx(ctx, tx, existing.CitizenID, existing.ID, pointsIssued,
				fmt.Sprintf("Approved report #%d (%s)", existing.ID, existing.ViolationType)); err != nil {
				return err
			}
			if _, err := s.events.Log(ctx, tx, LogEventParams{
				ReportID:  existing.ID,
				EventType: types.EventPointsAwarded,
				Title:     fmt.Sprintf("%d points awarded", pointsIssued),
				Metadata: map[string]interface{}{
					"points": pointsIssued,
				},
				ActorID:   &reviewerID,
				ActorRole: "POLICE",
			}); err != nil {
				return err
			}
		}

		citizen, err = s.citizenRepo.GetByID(ctx, tx, existing.CitizenID)
		if err != nil {
			return err
		}
		report = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("report transitioned",
		"report_id", report.ID,
		"status", report.Status,
		"points_awarded", report.PointsAwarded,
		"reviewer_id", decision.ReviewerID.String(),
	)

	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, citizen, report.ID, report.Status, report.ReviewNotes)
		if pointsIssued > 0 {
			s.notifier.NotifyPointsEarned(ctx, citizen, report.ID, pointsIssued, citizen.TotalPoints)
		}
	}
	return report, nil
}

// computeAward returns base points scaled by the number of violation
// categories in the incident, plus the first-reporter bonus. The bonus
// applies when no already-approved report of the same type sits inside
// the window around this report's incident time; the check runs before
// this report's own status flips so it never matches itself.
func (s *reviewService) computeAward(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (int, error) {
	categories := 1
	if len(report.CoReportedTypes) > 0 {
		var co []string
		if err := json.Unmarshal(report.CoReportedTypes, &co); err != nil {
			return 0, fmt.Errorf("decode co-reported types for report %d: %w", report.ID, err)
		}
		categories += len(co)
	}
	points := s.cfg.PointsPerApproved * categories
	taken, err := s.reportRepo.HasApprovedNearby(ctx, tx, repos.CandidateQuery{
		ViolationType: report.ViolationType,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		OccurredAt:    report.OccurredAt,
		TimeWindow:    s.cfg.TimeWindow,
		BBoxDelta:     s.cfg.BBoxDelta,
	})
	if err != nil {
		return 0, err
	}
	if !taken {
		points += s.cfg.FirstReporterBonus
	}
	return points, nil
}
