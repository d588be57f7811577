package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nadiaferrer/studiohub-backend/api/controllers"
	"github.com/nadiaferrer/studiohub-backend/api/routes"
	"github.com/nadiaferrer/studiohub-backend/internal/cart"
	"github.com/nadiaferrer/studiohub-backend/internal/checkout"
	"github.com/nadiaferrer/studiohub-backend/internal/enrollments"
	"github.com/nadiaferrer/studiohub-backend/internal/profiles"
	"github.com/nadiaferrer/studiohub-backend/internal/programs"
	"github.com/nadiaferrer/studiohub-backend/pkg/auth/session"
	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/db"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/metrics"
	"github.com/nadiaferrer/studiohub-backend/pkg/migrate"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox"
	"github.com/nadiaferrer/studiohub-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "studiohub-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database init failed", err)
		log.Fatal(err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "auto-migration failed", err)
		log.Fatal(err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "redis init failed", err)
		log.Fatal(err)
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "session manager init failed", err)
		log.Fatal(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	cartRepo := cart.NewRepository(dbClient.DB())
	programRepo := programs.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())
	enrollmentRepo := enrollments.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	checkoutSvc := checkout.NewService(
		dbClient,
		cartRepo,
		programRepo,
		profileRepo,
		enrollmentRepo,
		outboxSvc,
		checkoutMetrics,
		logg,
	)
	enrollmentSvc := enrollments.NewService(enrollmentRepo)

	router := routes.New(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Sessions:    sessions,
		Health:      controllers.NewHealthController(dbClient, redisClient, logg),
		Checkout:    controllers.NewCheckoutController(checkoutSvc, logg),
		Enrollments: controllers.NewEnrollmentsController(enrollmentSvc, logg),
		Registry:    registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	logg.Info(context.Background(), "api stopped")
}
