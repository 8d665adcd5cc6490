package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/safestreets/safestreets-backend/internal/handlers"
	"github.com/safestreets/safestreets-backend/internal/middleware"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
)

type RouterConfig struct {
	HealthcheckHandler *handlers.HealthcheckHandler
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	ReportHandler      *handlers.ReportHandler
	CitizenHandler     *handlers.CitizenHandler
	PoliceHandler      *handlers.PoliceHandler
	FeedbackHandler    *handlers.FeedbackHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(envutil.Str("OTEL_SERVICE_NAME", "safestreets-backend")))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthz)
	auth := router.Group("/api/auth")
	{
		auth.POST("/otp/request", cfg.AuthHandler.RequestOTP)
		auth.POST("/otp/verify", cfg.AuthHandler.VerifyOTP)
		auth.POST("/police/login", cfg.AuthHandler.PoliceLogin)
	}

	// Citizen
	citizen := router.Group("/api/citizen")
	citizen.Use(cfg.AuthMiddleware.RequireCitizen())
	{
		citizen.GET("/me", cfg.CitizenHandler.GetMe)
		citizen.PATCH("/me", cfg.CitizenHandler.UpdateMe)
		citizen.POST("/reports", cfg.ReportHandler.Submit)
		citizen.GET("/reports", cfg.ReportHandler.MyReports)
		citizen.GET("/reports/:id", cfg.ReportHandler.GetByID)
		citizen.GET("/reports/:id/events", cfg.ReportHandler.Timeline)
		citizen.POST("/reports/:id/media", cfg.ReportHandler.AttachMedia)
		citizen.GET("/points", cfg.CitizenHandler.PointsHistory)
		citizen.POST("/points/redeem", cfg.CitizenHandler.RedeemPoints)
		citizen.GET("/notifications", cfg.CitizenHandler.Notifications)
		citizen.POST("/notifications/:id/read", cfg.CitizenHandler.ReadNotification)
		citizen.POST("/notifications/read-all", cfg.CitizenHandler.ReadAllNotifications)
		citizen.GET("/leaderboard", cfg.CitizenHandler.Leaderboard)
		citizen.POST("/feedback", cfg.FeedbackHandler.SubmitAsCitizen)
		citizen.GET("/feedback", cfg.FeedbackHandler.MyFeedback)
	}

	// Police
	police := router.Group("/api/police")
	police.Use(cfg.AuthMiddleware.RequirePolice())
	{
		police.GET("/dashboard", cfg.PoliceHandler.Dashboard)
		police.GET("/reports", cfg.PoliceHandler.Queue)
		police.GET("/reports/:id", cfg.ReportHandler.GetByID)
		police.GET("/reports/:id/events", cfg.ReportHandler.Timeline)
		police.PUT("/reports/:id/review", cfg.PoliceHandler.Review)
		police.POST("/reports/:id/fine", cfg.PoliceHandler.IssueFine)
		police.GET("/duplicates/:groupId", cfg.PoliceHandler.DuplicateGroup)
		police.GET("/fines/vehicle/:vehicleNumber", cfg.PoliceHandler.VehicleFines)
		police.PUT("/fines/:id/status", cfg.PoliceHandler.SetFineStatus)
		police.POST("/officers", cfg.AuthHandler.RegisterOfficer)
		police.POST("/feedback", cfg.FeedbackHandler.SubmitAsOfficer)
		police.GET("/feedback", cfg.FeedbackHandler.List)
		police.GET("/feedback/:id", cfg.FeedbackHandler.GetByID)
		police.PUT("/feedback/:id", cfg.FeedbackHandler.Update)
		police.POST("/feedback/:id/responses", cfg.FeedbackHandler.Respond)
	}

	return router
}
