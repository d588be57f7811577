package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/db"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox"
	"github.com/nadiaferrer/studiohub-backend/pkg/pubsub"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "studiohub-outbox-publisher",
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

	transport, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "pubsub init failed", err)
		log.Fatal(err)
	}
	defer transport.Close()

	publisher := NewPublisher(outbox.NewRepository(dbClient.DB()), transport, cfg.Outbox, logg)

	logg.Info(ctx, "outbox publisher started")
	if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "publisher stopped", err)
		log.Fatal(err)
	}
	logg.Info(context.Background(), "outbox publisher stopped")
}
