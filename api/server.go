package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"tcpsweep/config"
	"tcpsweep/docs"
	"tcpsweep/scanner"
)

const shutdownTimeout = 10 * time.Second

// RouterOptions carries the cross-cutting middleware settings.
type RouterOptions struct {
	APIKey     string
	Limiter    RateCounter
	RateLimit  int64
	RateWindow time.Duration
	Logger     *slog.Logger
}

// NewRouter wires middleware, scan routes, health and swagger docs onto a Gin engine.
func NewRouter(server *Server, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), SecurityHeadersMiddleware(), RequestLoggingMiddleware(opts.Logger))

	router.GET(docs.SwaggerInfo.BasePath+"/healthz", server.healthHandler)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group(docs.SwaggerInfo.BasePath)
	v1.Use(
		AuthMiddleware(opts.APIKey, opts.Logger),
		RateLimitMiddleware(opts.Limiter, opts.RateLimit, opts.RateWindow, opts.Logger),
	)
	server.RegisterRoutes(v1)

	return router
}

// Run initializes dependencies and serves the API until ctx is canceled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	store := NewRedisStore(redisClient, cfg.TaskTTL)
	sc := scanner.New(cfg.ProbeTimeout, scanner.WithLogger(logger.With("component", "scanner")))
	workers := NewWorkers(store, sc, logger.With("component", "worker"), cfg.Workers)

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(NewServer(store, cfg.DefaultBatch, cfg.MaxBatch), RouterOptions{
		APIKey:     cfg.APIKey,
		Limiter:    redisClient,
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
		Logger:     logger.With("component", "http"),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return workers.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("starting scan API server", "addr", cfg.Addr, "workers", cfg.Workers)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down scan API server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
