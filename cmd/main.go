package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/config"
	"github.com/oksasatya/go-auth-lifecycle/internal/application"
	"github.com/oksasatya/go-auth-lifecycle/internal/container"
	esinfra "github.com/oksasatya/go-auth-lifecycle/internal/infrastructure/elasticsearch"
	pginfra "github.com/oksasatya/go-auth-lifecycle/internal/infrastructure/postgres"
	"github.com/oksasatya/go-auth-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-auth-lifecycle/internal/router"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-auth-lifecycle/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	var storeOpts []pginfra.Option
	if cfg.DBTrace {
		storeOpts = append(storeOpts, pginfra.WithTrace(logger))
	}
	store := pginfra.NewUserRepository(pool, storeOpts...)

	tokens, err := helpers.LoadTokenManager(cfg.TokenAlgorithm, cfg.TokenSecret, cfg.TokenPrivateKeyPath, cfg.TokenPublicKeyPath, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		logger.WithError(err).Fatal("failed to load token keys")
	}

	notifier, rabbit, err := container.BuildNotifier(cfg, logger, tokens.TTL())
	if err != nil {
		logger.WithError(err).Fatal("failed to init mail transport")
	}

	c := &container.Container{
		Config:   cfg,
		Logger:   logger,
		PGPool:   pool,
		Redis:    connectRedis(ctx, cfg, logger),
		Rabbit:   rabbit,
		Tokens:   tokens,
		Notifier: notifier,
	}
	defer c.Close()

	opts := []application.Option{
		application.WithThrottle(cfg.LoginMaxAttempts, cfg.LoginThrottleWindow),
		application.WithChangePasswordDelay(cfg.ChangePasswordDelay),
	}
	var audit *esinfra.AuditSink
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
	} else if es != nil {
		c.ES = es
		audit = esinfra.NewAuditSink(es, cfg.ESAuditIndex, logger)
		opts = append(opts, application.WithAuditSink(audit))
	}
	c.Lifecycle = application.NewService(store, helpers.NewBcryptHasher(cfg.BcryptCost), tokens, notifier, logger, opts...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r, cfg.APIBasePath)
	router.InitModules(reg, c)
	logger.WithField("modules", reg.RegisterAll()).Info("routes registered")

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	audit.Flush()
	logger.Info("server exited")
}

// connectRedis returns nil when rate limiting is off. An unreachable Redis
// is kept: the limiter fails open until it comes back.
func connectRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if !cfg.RateLimitEnabled {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable; rate limiting fails open")
	}
	return rdb
}

// corsConfig allows every origin unless CORS_ALLOWED_ORIGINS narrows it.
func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	} else {
		cc.AllowAllOrigins = true
	}
	return cc
}
