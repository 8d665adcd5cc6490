package app

import (
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/repos"
)

type Repos struct {
	Citizen      repos.CitizenRepo
	User         repos.UserRepo
	Report       repos.ViolationReportRepo
	Event        repos.ReportEventRepo
	Ledger       repos.PointsTransactionRepo
	Notification repos.NotificationRepo
	Fine         repos.FineRepo
	Feedback     repos.FeedbackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Citizen:      repos.NewCitizenRepo(db, log),
		User:         repos.NewUserRepo(db, log),
		Report:       repos.NewViolationReportRepo(db, log),
		Event:        repos.NewReportEventRepo(db, log),
		Ledger:       repos.NewPointsTransactionRepo(db, log),
		Notification: repos.NewNotificationRepo(db, log),
		Fine:         repos.NewFineRepo(db, log),
		Feedback:     repos.NewFeedbackRepo(db, log),
	}
}
