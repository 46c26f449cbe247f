package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/daypilot/backend/config"
)

// PostgresDSN builds the key/value connection string shared by gorm and lib/pq.
func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)
}

// New opens the configured store. Postgres gets the same pool settings the
// service has always run with; SQLite is for local development and tests.
func New(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: NewGormLogger(log, 200*time.Millisecond)}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		log.WithField("path", cfg.SQLitePath).Info("opening sqlite database")
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		log.WithFields(logrus.Fields{
			"host": cfg.DBHost,
			"port": cfg.DBPort,
			"user": cfg.DBUser,
		}).Info("connecting to database")
		dialector = postgres.Open(PostgresDSN(cfg))
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// One writer at a time.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := HealthCheck(context.Background(), db); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("successfully connected to database")
	return db, nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WaitForPostgres pings dsn through lib/pq until it answers, attempts run out
// or ctx ends. Used before migrations when the database container may still
// be starting.
func WaitForPostgres(ctx context.Context, dsn string, attempts int, interval time.Duration, log logrus.FieldLogger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	for i := 1; ; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if i >= attempts {
			return fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
		}
		log.WithError(err).WithField("attempt", i).Warn("database not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
