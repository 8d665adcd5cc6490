package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/safestreets/safestreets-backend/internal/db"
	"github.com/safestreets/safestreets-backend/internal/observability"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	database, err := db.Connect(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: envutil.Str("OTEL_SERVICE_NAME", "safestreets-backend"),
		Environment: envutil.Str("APP_ENV", "development"),
		Version:     envutil.Str("APP_VERSION", "dev"),
	})

	clients := wireClients(log)
	reposet := wireRepos(database, log)
	serviceset, err := wireServices(database, log, cfg, reposet, clients)
	if err != nil {
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(database, log, serviceset)
	mw := wireMiddleware(log, serviceset)
	router := wireRouter(handlerset, mw)

	return &App{
		Log:          log,
		DB:           database,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
