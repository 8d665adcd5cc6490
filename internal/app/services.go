package app

import (
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Duplicate    services.DuplicateService
	Report       services.ReportService
	Review       services.ReviewService
	Events       services.ReportEventService
	Points       services.PointsService
	Notification services.NotificationService
	Citizen      services.CitizenService
	Dashboard    services.DashboardService
	Fines        services.FineService
	Feedback     services.FeedbackService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(db, r.Citizen, r.User, c.OTPs, c.SMS, cfg.Auth, log)
	if err != nil {
		return Services{}, err
	}

	events := services.NewReportEventService(r.Event, log)
	notification := services.NewNotificationService(db, r.Notification, c.SMS, cfg.Notification, log)
	points := services.NewPointsService(db, r.Citizen, r.Ledger, log)
	duplicate := services.NewDuplicateService(r.Report, cfg.Duplicate, log)
	report := services.NewReportService(db, r.Report, r.Citizen, duplicate, events, cfg.Report, log)
	review := services.NewReviewService(db, r.Report, r.Citizen, points, events, notification, cfg.Review, log)

	return Services{
		Auth:         auth,
		Duplicate:    duplicate,
		Report:       report,
		Review:       review,
		Events:       events,
		Points:       points,
		Notification: notification,
		Citizen:      services.NewCitizenService(r.Citizen, log),
		Dashboard:    services.NewDashboardService(r.Report, r.Citizen, log),
		Fines:        services.NewFineService(db, r.Fine, r.Report, log),
		Feedback:     services.NewFeedbackService(db, r.Feedback, r.Report, events, log),
	}, nil
}
