package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/handlers"
	"github.com/safestreets/safestreets-backend/internal/middleware"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/server"
)

type Handlers struct {
	Healthcheck *handlers.HealthcheckHandler
	Auth        *handlers.AuthHandler
	Report      *handlers.ReportHandler
	Citizen     *handlers.CitizenHandler
	Police      *handlers.PoliceHandler
	Feedback    *handlers.FeedbackHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Healthcheck: handlers.NewHealthcheckHandler(db),
		Auth:        handlers.NewAuthHandler(s.Auth),
		Report:      handlers.NewReportHandler(s.Report),
		Citizen:     handlers.NewCitizenHandler(s.Citizen, s.Points, s.Notification),
		Police:      handlers.NewPoliceHandler(s.Review, s.Report, s.Dashboard, s.Fines),
		Feedback:    handlers.NewFeedbackHandler(s.Feedback),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, s.Auth),
	}
}

func wireRouter(h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		HealthcheckHandler: h.Healthcheck,
		AuthHandler:        h.Auth,
		AuthMiddleware:     mw.Auth,
		ReportHandler:      h.Report,
		CitizenHandler:     h.Citizen,
		PoliceHandler:      h.Police,
		FeedbackHandler:    h.Feedback,
	})
}
