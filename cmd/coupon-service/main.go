package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/offerstack/coupon-service/internal/api"
	"github.com/offerstack/coupon-service/internal/api/handlers"
	"github.com/offerstack/coupon-service/internal/api/middleware"
	"github.com/offerstack/coupon-service/internal/cache"
	"github.com/offerstack/coupon-service/internal/config"
	"github.com/offerstack/coupon-service/internal/obs"
	"github.com/offerstack/coupon-service/internal/repository"
	"github.com/offerstack/coupon-service/internal/service"
	"github.com/offerstack/coupon-service/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := obs.NewLogger("json", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	couponRepo := repository.NewCouponRepo(conn)
	usageRepo := repository.NewUsageRepo(conn)
	couponCache := cache.NewCouponCache(cfg.CouponCacheTTL)
	svc := service.NewCouponService(couponRepo, usageRepo, couponCache)
	handler := handlers.NewCouponHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}
	r.Use(middleware.RequestLogger{Logger: logger}.Handler)
	r.Mount("/", api.NewRouter(handler))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("http server shutdown")
		}
		close(idleConnsClosed)
	}()

	logger.Info().Str("addr", srv.Addr).Msg("starting coupon-service")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("listen")
	}

	<-idleConnsClosed
	logger.Info().Msg("server stopped")
}
