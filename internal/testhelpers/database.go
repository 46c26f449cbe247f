package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/daypilot/backend/config"
	"github.com/daypilot/backend/internal/database"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "daypilot"
	pgPassword = "daypilot"
	pgDatabase = "daypilot_test"
)

// open goes through the same path the service uses, then migrates.
func open(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()
	log, _ := Logger()

	db, err := database.New(cfg, log)
	require.NoError(t, err, "open %s database", cfg.DBDriver)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db, "", log))
	return db
}

// SetupTestDB returns a migrated in-memory SQLite database private to t.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return open(t, &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
}

// SetupPostgres starts a throwaway Postgres container and returns a migrated
// connection to it. The test is skipped without docker or with -short.
func SetupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
				return database.PostgresDSN(postgresConfig(host, port.Port()))
			}).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return open(t, postgresConfig(host, port.Port()))
}

func postgresConfig(host, port string) *config.Config {
	return &config.Config{
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     port,
		DBUser:     pgUser,
		DBPassword: pgPassword,
		DBName:     pgDatabase,
		DBSSLMode:  "disable",
	}
}
