package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/config"
	"github.com/daypilot/backend/internal/database"
	"github.com/daypilot/backend/internal/logging"
)

func main() {
	// Parse command line flags
	migrationsDir := flag.String("dir", "migrations", "Directory of *.sql migrations; empty runs auto-migrate only")
	attempts := flag.Int("wait", 15, "Attempts to reach Postgres before giving up")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "daypilot-migrate"})

	if cfg.DBDriver != "sqlite" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := database.WaitForPostgres(ctx, database.PostgresDSN(cfg), *attempts, 2*time.Second, log); err != nil {
			log.WithError(err).Fatal("database unavailable")
		}
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if err := database.RunMigrations(db, *migrationsDir, log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("all migrations applied successfully")
}
