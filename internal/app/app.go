package app

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/db"
	lmshttp "github.com/yungbote/lms-backend/internal/http"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/envutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
)

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Cfg        Config
	Repos      Repos
	Aggregates Aggregates
	Services   Services
	Events     bus.Bus
	Metrics    *observability.Metrics
	Server     *lmshttp.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init(log, cfg.MetricsEnabled)
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("database automigrate: %w", err)
		}
	}
	theDB := pg.DB()

	events, err := wireEventBus(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	aggset := wireAggregates(theDB, log, cfg, reposet, events, metrics)
	serviceset := wireServices(theDB, log, cfg, reposet)
	server := wireRouter(log, cfg, theDB, serviceset, aggset, events, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Aggregates:   aggset,
		Services:     serviceset,
		Events:       events,
		Metrics:      metrics,
		Server:       server,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// wireEventBus returns the redis publisher when REDIS_ADDR is set and the
// noop bus otherwise.
func wireEventBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set; lifecycle events are dropped")
		return bus.NewNoopBus(), nil
	}
	b, err := bus.NewRedisBus(log, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis event bus: %w", err)
	}
	return b, nil
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	a.Metrics.StartDBCollector(gctx, a.Log, a.DB, a.Cfg.DBStatsInterval)
	// Optional dedicated listener; /metrics is also mounted on the API router.
	a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr)
		return a.Server.Run(gctx, a.Cfg.Addr, a.Cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			a.Log.Warn("event bus close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
