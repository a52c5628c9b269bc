package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	outboundredis "github.com/veoflow/server/internal/adapter/outbound/redis"
	"github.com/veoflow/server/internal/infra/httpclient"
	"github.com/veoflow/server/internal/module/gallery"
	"github.com/veoflow/server/internal/module/vertex"
	"github.com/veoflow/server/internal/module/video"
	"github.com/veoflow/server/internal/port/outbound"
	"github.com/veoflow/server/internal/shared/config"
	"github.com/veoflow/server/internal/utils/logger"
	"github.com/veoflow/server/internal/utils/metrics"
	"github.com/veoflow/server/internal/utils/middleware"
)

// App wires configuration, the Vertex AI gateway, the gallery store, and
// the HTTP surface together.
type App struct {
	config    *config.Config
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	redis     *goredis.Client

	metrics  *metrics.Metrics
	registry *prometheus.Registry

	rateLimiter  outbound.RateLimiterPort
	videoHandler *video.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Modules log through zap; the router middleware uses the slog wrapper.
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
	}

	app.metrics, app.registry = metrics.New("veoflow")

	// Redis is optional; it only backs the submit rate limiter.
	if cfg.Redis.Enabled {
		redisClient, err := outboundredis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, rate limiting disabled", "error", err)
		} else {
			app.redis = redisClient
			app.rateLimiter = outboundredis.NewRateLimiter(redisClient)
		}
	}

	app.initModules()
	app.router = app.setupRouter()

	return app, nil
}

// initModules builds the domain modules and their outbound dependencies.
func (a *App) initModules() {
	httpClient := httpclient.New(a.config.HTTPClient)

	resolver := vertex.NewResolver(&vertex.ResolverConfig{
		HTTPClient:      httpClient,
		TokenURL:        a.config.Vertex.TokenURL,
		CredentialsFile: a.config.Vertex.CredentialsFile,
		AllowGcloudCLI:  a.config.Vertex.AllowGcloudCLI,
		Logger:          a.zapLogger,
		Metrics:         a.metrics,
	})

	client := vertex.NewClient(&vertex.ClientConfig{
		HTTPClient:  httpClient,
		HostSuffix:  a.config.Vertex.HostSuffix,
		CallTimeout: a.config.Vertex.CallTimeout,
		Logger:      a.zapLogger,
	})

	store := gallery.NewFileStore(&gallery.FileStoreConfig{
		Path:       a.config.Gallery.Path,
		MaxEntries: a.config.Gallery.MaxEntries,
		Logger:     a.zapLogger,
	})

	videoService := video.NewService(&video.ServiceConfig{
		Gateway:         client,
		Resolver:        resolver,
		Store:           store,
		DefaultLocation: a.config.Vertex.Location,
		Logger:          a.zapLogger,
		Metrics:         a.metrics,
	})
	a.videoHandler = video.NewHandler(videoService)
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	// Submits start costly upstream jobs; polls and gallery reads stay
	// unlimited.
	var generateMW []gin.HandlerFunc
	if a.rateLimiter != nil {
		generateMW = append(generateMW, middleware.RateLimit(a.rateLimiter, middleware.RateLimitConfig{
			Limit:  a.config.RateLimit.Limit,
			Window: a.config.RateLimit.Window,
		}))
	}
	a.videoHandler.RegisterRoutes(api, generateMW...)

	return r
}

// Router returns the configured HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", "error", err)
		}
	}
	_ = a.zapLogger.Sync()
}
