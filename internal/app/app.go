package app

import (
	"context"
	"os"

	"github.com/grvbrk/yt-categorizer/internal/config"
	"github.com/grvbrk/yt-categorizer/internal/handlers"
	handler_analytics "github.com/grvbrk/yt-categorizer/internal/handlers/analytics"
	"github.com/grvbrk/yt-categorizer/internal/middlewares"
	"github.com/grvbrk/yt-categorizer/internal/services"
	"github.com/grvbrk/yt-categorizer/internal/store"
	"github.com/grvbrk/yt-categorizer/internal/store/analytics"
	"github.com/grvbrk/yt-categorizer/internal/youtube"
	"github.com/grvbrk/yt-categorizer/migrations"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Application struct {
	Config                    *config.Config
	Logger                    *logrus.Logger
	VideoStore                store.VideoStore
	IngestionService          *services.IngestionService
	MiddlewareHandler         *middlewares.MiddlewareHandler
	ChannelHandler            *handlers.ChannelHandler
	VideoHandler              *handlers.VideoHandler
	AnalyticsIngestionHandler *handler_analytics.AnalyticsIngestionHandler

	closers []func() error
}

func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// OpenVideoStore connects the configured store and brings its schema up to
// date.
func OpenVideoStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.VideoStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := store.ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		videoStore, err := store.NewMongoVideoStore(ctx, client, cfg.MongoDatabase, logger)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return videoStore, nil

	case config.StorePostgres:
		db, err := store.ConnectPGDB(ctx, cfg.DBURL, logger)
		if err != nil {
			return nil, err
		}
		if err := store.MigrateFS(db, store.DialectPostgres, migrations.FS, "db"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "postgres migration failed")
		}
		logger.Info("Database migrated...")
		return store.NewSQLVideoStore(db, store.DialectPostgres, logger), nil

	default:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.MigrateFS(db, store.DialectSQLite, migrations.FS, "db"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "sqlite migration failed")
		}
		logger.WithField("path", cfg.SQLitePath).Info("Database migrated...")
		return store.NewSQLVideoStore(db, store.DialectSQLite, logger), nil
	}
}

func clickhouseConfig(cfg *config.Config) store.ClickhouseConfig {
	return store.ClickhouseConfig{
		Addr:     cfg.ClickhouseURL,
		Database: cfg.ClickhouseDatabase,
		Username: cfg.ClickhouseUsername,
		Password: cfg.ClickhousePassword,
	}
}

// MigrateAnalytics applies the ClickHouse migrations when analytics is configured.
func MigrateAnalytics(cfg *config.Config) error {
	if !cfg.AnalyticsEnabled() {
		return nil
	}
	return store.MigrateClickhouse(clickhouseConfig(cfg), migrations.AnalyticsFS, "analytics")
}

func NewApplication(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Application, error) {
	if cfg.YouTubeAPIKey == "" {
		return nil, errors.New("YOUTUBE_API_KEY is required")
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	videoStore, err := OpenVideoStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Error connecting to video store")
		return nil, err
	}
	app.VideoStore = videoStore
	app.closers = append(app.closers, videoStore.Close)

	var handleCache youtube.HandleCache
	if cfg.RedisURL != "" {
		redisClient, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, handle cache disabled")
		} else {
			cache := store.NewRedisResolutionCache(redisClient, cfg.ResolveCacheTTL)
			handleCache = cache
			app.closers = append(app.closers, cache.Close)
		}
	}

	var ingestionStore analytics.IngestionStore
	if cfg.AnalyticsEnabled() {
		if err := MigrateAnalytics(cfg); err != nil {
			app.Close()
			logger.WithError(err).Error("Clickhouse migration failed")
			return nil, err
		}

		conn, err := store.ConnectClickhouse(ctx, clickhouseConfig(cfg), logger)
		if err != nil {
			app.Close()
			logger.WithError(err).Error("Error connecting to clickhouse")
			return nil, err
		}
		ingestionStore = analytics.NewClickhouseIngestionStore(conn)
		app.closers = append(app.closers, conn.Close)
	}

	client, err := youtube.NewClient(ctx, youtube.ClientConfig{
		APIKey:            cfg.YouTubeAPIKey,
		Endpoint:          cfg.YouTubeAPIEndpoint,
		RequestsPerSecond: cfg.YouTubeRateLimit,
		Retry:             youtube.DefaultRetryConfig,
	}, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	resolver := youtube.NewResolver(client, handleCache, logger)
	enumerator := youtube.NewEnumerator(client, logger)

	var recorder services.IngestionRecorder
	if ingestionStore != nil {
		recorder = ingestionStore
	}
	app.IngestionService = services.NewIngestionService(resolver, enumerator, videoStore, recorder, logger)

	app.MiddlewareHandler = middlewares.NewMiddlewareHandler(logger, cfg.AllowedOrigins)
	app.ChannelHandler = handlers.NewChannelHandler(app.IngestionService, videoStore, logger, cfg.MaxChannels)
	app.VideoHandler = handlers.NewVideoHandler(videoStore, logger)
	app.AnalyticsIngestionHandler = handler_analytics.NewAnalyticsIngestionHandler(ingestionStore, logger)

	return app, nil
}

// Close releases every connection the application opened, newest first.
func (a *Application) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.WithError(err).Warn("error closing resource")
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}
