package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/daypilot/backend/config"
	"github.com/daypilot/backend/internal/api"
	"github.com/daypilot/backend/internal/database"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/logging"
	"github.com/daypilot/backend/internal/middleware"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/router"
	"github.com/daypilot/backend/internal/server"
	"github.com/daypilot/backend/internal/service"
)

func main() {
	migrationsDir := flag.String("migrations", "", "Directory of extra *.sql migrations applied after auto-migrate")
	flag.Parse()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		Service:      "daypilot-api",
		LogstashAddr: cfg.LogstashAddr,
		ElasticURL:   cfg.ElasticURL,
		ElasticIndex: cfg.ElasticIndex,
	})
	log.WithField("environment", cfg.Environment).Info("starting DayPilot API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrationsDir, log); err != nil {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, migrationsDir string, log *logrus.Logger) error {
	if cfg.DBDriver != "sqlite" {
		if err := database.WaitForPostgres(ctx, database.PostgresDSN(cfg), 10, 2*time.Second, log); err != nil {
			return err
		}
	}
	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, migrationsDir, log); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	hub := live.NewHub(0)
	var pub live.Publisher = hub
	if cfg.AMQPURL != "" {
		bridge, conn, err := live.Dial(cfg.AMQPURL, hub, log.WithField("component", "live"))
		if err != nil {
			return err
		}
		defer conn.Close()
		pub = bridge
		g.Go(func() error { return bridge.Run(gctx) })
		log.Info("live updates bridged over rabbitmq")
	}

	checks := map[string]api.Pinger{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	var limiters rateLimiters
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			// Uploads stay available without rate limiting.
			log.WithError(err).Warn("redis unavailable, rate limiting disabled")
		} else {
			defer client.Close()
			limiters.uploads = middleware.NewUploadRateLimiter(client, cfg.UploadRateLimit, cfg.UploadRateWindow, log)
			limiters.auth = middleware.NewAuthRateLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow, log)
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	var s3cfg *config.S3Config
	if cfg.UploadsEnabled() {
		if s3cfg, err = config.NewS3Config(ctx, cfg); err != nil {
			return err
		}
	} else {
		log.Warn("S3 bucket not configured, uploads disabled")
	}

	handler := router.SetupRouter(dependencies(db, cfg, pub, hub, s3cfg, limiters, checks, log))
	srv := server.New(cfg, handler, log)
	g.Go(func() error { return srv.Start(gctx) })

	return g.Wait()
}

type rateLimiters struct {
	uploads *middleware.RateLimiter
	auth    *middleware.RateLimiter
}

func dependencies(db *gorm.DB, cfg *config.Config, pub live.Publisher, hub *live.Hub, s3cfg *config.S3Config,
	limiters rateLimiters, checks map[string]api.Pinger, log logrus.FieldLogger) router.Dependencies {
	return router.Dependencies{
		Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, log),
		Profiles:      service.NewProfileService(db, pub, log),
		Tasks:         service.NewTaskService(db, pub, log),
		Routines:      service.NewRoutineService(db, pub, log),
		Menu:          service.NewMenuService(db, nil, nutrition.ParseMatchStrategy(cfg.NutritionMatch), pub, log),
		Meals:         service.NewMealService(db, pub, log),
		Shopping:      service.NewShoppingService(db, pub, log),
		Uploads:       service.NewUploadService(s3cfg, cfg.UploadMaxBytes, pub, log),
		Hub:           hub,
		UploadLimiter: limiters.uploads,
		AuthLimiter:   limiters.auth,
		CORSOrigins:   cfg.CORSOrigins,
		Checks:        checks,
		Log:           log,
	}
}
