package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
	"github.com/safestreets/safestreets-backend/internal/types"
)

func Connect(log *logger.Logger) (*gorm.DB, error) {
	dsn := envutil.Str("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			envutil.Str("DB_HOST", "localhost"),
			envutil.Str("DB_PORT", "5432"),
			envutil.Str("DB_USER", "postgres"),
			envutil.Str("DB_PASSWORD", "postgres"),
			envutil.Str("DB_NAME", "safestreets"),
			envutil.Str("DB_SSLMODE", "disable"),
		)
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	database, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(envutil.Int("DB_MAX_OPEN_CONNS", 25))
	sqlDB.SetMaxIdleConns(envutil.Int("DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(time.Duration(envutil.Int("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute)

	log.Info("connected to postgres",
		"max_open_conns", envutil.Int("DB_MAX_OPEN_CONNS", 25),
	)
	return database, nil
}

// Migrate applies the schema for every persisted model.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&types.Citizen{},
		&types.User{},
		&types.ViolationReport{},
		&types.ReportEvent{},
		&types.PointsTransaction{},
		&types.Notification{},
		&types.FineRecord{},
		&types.Feedback{},
		&types.FeedbackResponse{},
	)
}
