package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/db"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "directory with migration files")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}
	var commandArgs []string
	if flag.NArg() > 1 {
		commandArgs = flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "studiohub-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		log.Fatalf("connecting database: %v", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		log.Fatalf("extracting sql.DB: %v", err)
	}

	if err := migrate.Run(ctx, sqlDB, *dir, command, commandArgs...); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	logg.Info(logg.WithField(ctx, "command", command), "migration complete")
}
