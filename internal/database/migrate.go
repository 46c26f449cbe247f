package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/daypilot/backend/internal/models"
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserProfile{},
		&models.Task{},
		&models.Routine{},
		&models.RoutineBlock{},
		&models.MenuItem{},
		&models.CustomFood{},
		&models.Meal{},
		&models.ShoppingItem{},
		&models.ShoppingReminder{},
	}
}

// RunMigrations brings the schema up to date with the models, then applies
// any *.sql files in migrationsDir not yet recorded in the migrations table.
// An empty migrationsDir skips the SQL step.
func RunMigrations(db *gorm.DB, migrationsDir string, log logrus.FieldLogger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	log.WithField("dialect", db.Dialector.Name()).Info("schema auto-migrated")

	if migrationsDir == "" {
		return nil
	}
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.WithField("migration", name).Debug("skipping applied migration")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.WithField("migration", name).Info("applied migration")
	}

	return nil
}
