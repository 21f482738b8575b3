package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/handlers"
	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
	"github.com/ternarybob/sentio/internal/publisher/kafka"
	"github.com/ternarybob/sentio/internal/services/aggregation"
	"github.com/ternarybob/sentio/internal/services/alerts"
	"github.com/ternarybob/sentio/internal/services/batch"
	"github.com/ternarybob/sentio/internal/services/cache"
	"github.com/ternarybob/sentio/internal/services/fusion"
	"github.com/ternarybob/sentio/internal/services/learned"
	"github.com/ternarybob/sentio/internal/services/lexicon"
	"github.com/ternarybob/sentio/internal/services/scheduler"
	"github.com/ternarybob/sentio/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger
	Clock  clockwork.Clock

	StorageManager *storage.Manager
	Cache          interfaces.SentimentCache
	stopSweeper    func()

	// Scoring
	Lexicon *lexicon.Scorer
	Learned *learned.Scorer
	Fusion  *fusion.Engine

	// Aggregation and alerting
	Aggregation  *aggregation.Engine
	Processor    *batch.Processor
	AlertService *alerts.Service
	Publisher    interfaces.AlertPublisher

	// Background jobs
	SchedulerService *scheduler.Service
	Collector        *scheduler.Collector

	// HTTP handlers
	SentimentHandler *handlers.SentimentHandler
	AlertsHandler    *handlers.AlertsHandler
	StatusHandler    *handlers.StatusHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Clock:  clockwork.NewRealClock(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initCache(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("cache_backend", cfg.Cache.Backend).
		Str("learned_provider", cfg.Learned.Provider).
		Bool("alerts_enabled", cfg.Alerts.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the Badger and SQLite stores
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return err
	}
	a.StorageManager = storageManager

	a.Logger.Debug().
		Str("badger", a.Config.Storage.Badger.Path).
		Str("sqlite", a.Config.Storage.SQLite.Path).
		Msg("Storage layer initialized")
	return nil
}

// initCache selects the sentiment cache backend
func (a *App) initCache() error {
	ttl := common.Duration(a.Config.Fusion.CacheTTL, models.DefaultCacheTTL)

	switch a.Config.Cache.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := cache.NewRedisClient(ctx, a.Config.Cache.RedisURL)
		if err != nil {
			return err
		}
		a.Cache = cache.NewRedisCache(rdb, ttl, a.Clock)
	case "badger":
		a.Cache = a.StorageManager.ScoreCache(ttl, a.Clock)
	default:
		memory := cache.NewMemoryCache(ttl, a.Clock, a.Logger)
		a.stopSweeper = memory.StartSweeper(common.Duration(a.Config.Cache.SweepInterval, 10*time.Minute))
		a.Cache = memory
	}

	a.Logger.Debug().Str("backend", a.Config.Cache.Backend).Dur("ttl", ttl).Msg("Sentiment cache initialized")
	return nil
}

func (a *App) initServices() error {
	a.Lexicon = lexicon.NewScorer()

	classifier, err := learned.NewClassifier(a.Config.Learned)
	if err != nil {
		return err
	}
	a.Learned = learned.NewScorer(classifier, nil, a.Logger, learned.OptionsFromConfig(a.Config.Fusion, a.Config.Learned))

	a.Fusion = fusion.NewEngine(a.Lexicon, a.Learned, a.Cache, a.Logger,
		fusion.WithClock(a.Clock),
		fusion.WithLongTextThreshold(a.Config.Fusion.LongTextThreshold),
	)

	a.Aggregation = aggregation.NewEngine(a.Clock, a.Logger)

	articles := a.StorageManager.ArticleStorage()
	a.Processor = batch.NewProcessor(a.Fusion, articles, articles, a.Logger, batch.Options{
		Workers:       a.Config.Batch.Workers,
		RatePerSecond: a.Config.Batch.RatePerSecond,
		Burst:         a.Config.Batch.Burst,
		Limit:         a.Config.Batch.Limit,
		UseCache:      true,
	})

	if a.Config.Alerts.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(a.Config.Alerts.Kafka, a.Logger)
		if err != nil {
			return err
		}
		a.Publisher = publisher
	}

	a.AlertService = alerts.NewService(
		a.StorageManager.WatchlistStorage(),
		a.StorageManager.AlertStorage(),
		a.Publisher,
		a.Clock,
		a.Config.Alerts.DefaultThreshold,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.Logger, a.Clock)
	a.Collector = scheduler.NewCollector(a.Processor, articles, a.Aggregation, a.AlertService, a.Logger)

	return nil
}

func (a *App) initHandlers() {
	articles := a.StorageManager.ArticleStorage()
	a.SentimentHandler = handlers.NewSentimentHandler(a.Fusion, a.Aggregation, articles, a.Processor, a.Clock, a.Logger)
	a.AlertsHandler = handlers.NewAlertsHandler(a.AlertService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.Learned, a.Config.Cache.Backend, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService)
}

// StartScheduler registers the configured jobs and starts the cron. A job
// with an empty schedule is not registered; evaluation also needs alerts enabled.
func (a *App) StartScheduler() error {
	evaluationSchedule := ""
	if a.Config.Alerts.Enabled {
		evaluationSchedule = a.Config.Alerts.Schedule
	}
	if err := a.Collector.Register(a.SchedulerService, a.Config.Batch.Schedule, evaluationSchedule); err != nil {
		return err
	}
	return a.SchedulerService.Start()
}

// Close stops background work and releases storage
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.stopSweeper != nil {
		a.stopSweeper()
	}

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close alert publisher")
		}
	}

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close sentiment cache")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
