package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/pkg/geoutil"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

// DuplicateConfig bounds the candidate search and sets the match
// threshold. It is fixed at construction; per-test overrides replace
// the whole struct instead of mutating shared state.
type DuplicateConfig struct {
	TimeWindow    time.Duration
	BBoxDelta     float64
	Threshold     float64
	MaxCandidates int
}

func DuplicateConfigFromEnv() DuplicateConfig {
	return DuplicateConfig{
		TimeWindow:    time.Duration(envutil.Int("DUPLICATE_TIME_WINDOW_MINUTES", 30)) * time.Minute,
		BBoxDelta:     envutil.Float("DUPLICATE_BBOX_DELTA", 0.001),
		Threshold:     envutil.Float("DUPLICATE_CONFIDENCE_THRESHOLD", 0.7),
		MaxCandidates: envutil.Int("DUPLICATE_MAX_CANDIDATES", 5),
	}
}

// DuplicateDecision is the permanent annotation attached to a report at
// submission time. It is never re-evaluated, even if scoring parameters
// change later.
type DuplicateDecision struct {
	IsDuplicate     bool
	GroupID         *uint
	ConfidenceScore *float64
	MatchedReportID *uint
}

type DuplicateService interface {
	Evaluate(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (*DuplicateDecision, error)
}

type duplicateService struct {
	reportRepo repos.ViolationReportRepo
	cfg        DuplicateConfig
	log        *logger.Logger
}

func NewDuplicateService(reportRepo repos.ViolationReportRepo, cfg DuplicateConfig, baseLog *logger.Logger) DuplicateService {
	return &duplicateService{
		reportRepo: reportRepo,
		cfg:        cfg,
		log:        baseLog.With("service", "DuplicateService"),
	}
}

// Scoring weights. The coarse bounding-box prefilter in the repository
// and the great-circle distance here deliberately use different
// metrics: the box is the cheap index-friendly first pass, the circle
// is the precise second pass.
const (
	locationWeightNear = 50
	locationWeightFar  = 25
	timeWeightNear     = 30
	timeWeightFar      = 15
	vehicleWeight      = 20

	locationNearMeters = 50.0
	locationFarMeters  = 100.0
	timeNearDelta      = 5 * time.Minute
	timeFarDelta       = 15 * time.Minute
)

// LocationScore buckets a great-circle distance into its weight.
func LocationScore(distanceMeters float64) int {
	switch {
	case distanceMeters < locationNearMeters:
		return locationWeightNear
	case distanceMeters < locationFarMeters:
		return locationWeightFar
	default:
		return 0
	}
}

// TimeScore buckets the absolute time delta into its weight.
func TimeScore(delta time.Duration) int {
	if delta < 0 {
		delta = -delta
	}
	switch {
	case delta < timeNearDelta:
		return timeWeightNear
	case delta < timeFarDelta:
		return timeWeightFar
	default:
		return 0
	}
}

// VehicleScore awards the vehicle weight only when both sides carry a
// plate and they match case-insensitively.
func VehicleScore(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return vehicleWeight
	}
	return 0
}

// ConfidenceScore combines location, time, and vehicle similarity for
// one (report, candidate) pair into a [0,1] score. Pure and
// deterministic.
func ConfidenceScore(report, candidate *types.ViolationReport) float64 {
	distance := geoutil.DistanceMeters(
		report.Latitude, report.Longitude,
		candidate.Latitude, candidate.Longitude,
	)
	delta := geoutil.AbsDelta(report.OccurredAt, candidate.OccurredAt)

	total := LocationScore(distance) +
		TimeScore(delta) +
		VehicleScore(report.VehicleNumber, candidate.VehicleNumber)
	return float64(total) / 100
}

// resolveGroupID resolves the canonical duplicate-group identity for a
// candidate: the group it already belongs to, or its own id when it is
// about to anchor a new group. Stored group ids always point at the
// anchoring report, so resolution is a single hop.
func resolveGroupID(candidate *types.ViolationReport) uint {
	if candidate.DuplicateGroupID != nil {
		return *candidate.DuplicateGroupID
	}
	return candidate.ID
}

// Evaluate runs the duplicate decision for a not-yet-persisted report.
// Only the most recent candidate is scored; recency breaks ties. When
// the candidate anchors a new group its own group id is backfilled so
// every member of a group shares the same id.
func (s *duplicateService) Evaluate(ctx context.Context, tx *gorm.DB, report *types.ViolationReport) (*DuplicateDecision, error) {
	candidates, err := s.reportRepo.FindCandidates(ctx, tx, repos.CandidateQuery{
		ViolationType: report.ViolationType,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		OccurredAt:    report.OccurredAt,
		TimeWindow:    s.cfg.TimeWindow,
		BBoxDelta:     s.cfg.BBoxDelta,
		Limit:         s.cfg.MaxCandidates,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &DuplicateDecision{}, nil
	}

	top := candidates[0]
	score := ConfidenceScore(report, top)
	decision := &DuplicateDecision{
		ConfidenceScore: &score,
		MatchedReportID: &top.ID,
	}
	if score <= s.cfg.Threshold {
		return decision, nil
	}

	groupID := resolveGroupID(top)
	if top.DuplicateGroupID == nil {
		if err := s.reportRepo.SetDuplicateGroup(ctx, tx, top.ID, groupID); err != nil {
			return nil, err
		}
	}
	decision.IsDuplicate = true
	decision.GroupID = &groupID

	s.log.Info("duplicate detected",
		"matched_report_id", top.ID,
		"group_id", groupID,
		"confidence", score,
	)
	return decision, nil
}
