package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
	"github.com/safestreets/safestreets-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(
		&types.Citizen{},
		&types.User{},
		&types.ViolationReport{},
		&types.ReportEvent{},
		&types.PointsTransaction{},
		&types.Notification{},
		&types.FineRecord{},
		&types.Feedback{},
		&types.FeedbackResponse{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return database
}

func newTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type testEnv struct {
	db           *gorm.DB
	citizens     repos.CitizenRepo
	users        repos.UserRepo
	reports      repos.ViolationReportRepo
	eventRepo    repos.ReportEventRepo
	ledger       repos.PointsTransactionRepo
	notifRepo    repos.NotificationRepo
	duplicates   DuplicateService
	events       ReportEventService
	points       PointsService
	notification NotificationService
	reportSvc    ReportService
	reviewSvc    ReviewService
	feedbackSvc  FeedbackService
}

func defaultDuplicateConfig() DuplicateConfig {
	return DuplicateConfig{
		TimeWindow:    30 * time.Minute,
		BBoxDelta:     0.001,
		Threshold:     0.7,
		MaxCandidates: 5,
	}
}

func defaultReviewConfig() ReviewConfig {
	return ReviewConfig{
		PointsPerApproved:  100,
		FirstReporterBonus: 50,
		TimeWindow:         30 * time.Minute,
		BBoxDelta:          0.001,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := newTestDB(t)
	log := newTestLogger()

	env := &testEnv{db: database}
	env.citizens = repos.NewCitizenRepo(database, log)
	env.users = repos.NewUserRepo(database, log)
	env.reports = repos.NewViolationReportRepo(database, log)
	env.eventRepo = repos.NewReportEventRepo(database, log)
	env.ledger = repos.NewPointsTransactionRepo(database, log)
	env.notifRepo = repos.NewNotificationRepo(database, log)

	env.duplicates = NewDuplicateService(env.reports, defaultDuplicateConfig(), log)
	env.events = NewReportEventService(env.eventRepo, log)
	env.points = NewPointsService(database, env.citizens, env.ledger, log)
	env.notification = NewNotificationService(database, env.notifRepo, nil, NotificationConfig{TTL: 7 * 24 * time.Hour}, log)
	env.reportSvc = NewReportService(database, env.reports, env.citizens, env.duplicates, env.events, ReportConfig{MaxReportsPerDay: 50}, log)
	env.reviewSvc = NewReviewService(database, env.reports, env.citizens, env.points, env.events, env.notification, defaultReviewConfig(), log)
	env.feedbackSvc = NewFeedbackService(database, repos.NewFeedbackRepo(database, log), env.reports, env.events, log)
	return env
}

func (e *testEnv) mustCitizen(t *testing.T, phone string) *types.Citizen {
	t.Helper()
	citizen, err := e.citizens.Create(context.Background(), nil, &types.Citizen{
		Phone: phone,
		Name:  "Test Citizen",
	})
	if err != nil {
		t.Fatalf("create citizen: %v", err)
	}
	return citizen
}

func (e *testEnv) mustOfficer(t *testing.T, email string) *types.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), nil, &types.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test Officer",
		Role:         "POLICE",
	})
	if err != nil {
		t.Fatalf("create officer: %v", err)
	}
	return user
}

func (e *testEnv) mustSubmit(t *testing.T, citizenID uuid.UUID, params SubmitReportParams) *types.ViolationReport {
	t.Helper()
	params.CitizenID = citizenID
	report, err := e.reportSvc.Submit(context.Background(), params)
	if err != nil {
		t.Fatalf("submit report: %v", err)
	}
	return report
}

// baseline coordinates used across tests; offsets are degrees of
// latitude (0.00044 ≈ 49m, 0.00095 ≈ 105m).
const (
	baseLat = 12.9716
	baseLon = 77.5946
)
