package app

import (
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/services"
)

// Config gathers every tunable the services take at construction. All
// values come from the environment once at startup; nothing reads env
// vars after this point.
type Config struct {
	Port         string
	Auth         services.AuthConfig
	Duplicate    services.DuplicateConfig
	Report       services.ReportConfig
	Review       services.ReviewConfig
	Notification services.NotificationConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:         envutil.Str("PORT", "8080"),
		Auth:         services.AuthConfigFromEnv(),
		Duplicate:    services.DuplicateConfigFromEnv(),
		Report:       services.ReportConfigFromEnv(),
		Review:       services.ReviewConfigFromEnv(),
		Notification: services.NotificationConfigFromEnv(),
	}
	log.Info("configuration loaded",
		"port", cfg.Port,
		"duplicate_threshold", cfg.Duplicate.Threshold,
		"points_per_approved", cfg.Review.PointsPerApproved,
		"first_reporter_bonus", cfg.Review.FirstReporterBonus,
		"max_reports_per_day", cfg.Report.MaxReportsPerDay,
	)
	return cfg
}
