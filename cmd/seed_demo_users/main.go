// Command seed_demo_users creates demo accounts with a routine, tasks and a
// menu for today so a fresh environment has something to show.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/config"
	"github.com/daypilot/backend/internal/database"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/logging"
	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

const demoPassword = "daypilot123"

var demoUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", DisplayName: "John Doe"},
	{Email: "jane.smith@example.com", DisplayName: "Jane Smith"},
	{Email: "demo@example.com", DisplayName: "Demo User"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "daypilot-seed"})

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.RunMigrations(db, "", log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx := context.Background()
	pub := live.NopPublisher{}
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, log)
	tasks := service.NewTaskService(db, pub, log)
	routines := service.NewRoutineService(db, pub, log)
	menu := service.NewMenuService(db, nil, nutrition.MatchFirstInOrder, pub, log)
	today := time.Now().Format("2006-01-02")

	for _, req := range demoUsers {
		req.Password = demoPassword
		user, _, err := auth.Register(ctx, &req)
		if errors.Is(err, service.ErrUserExists) {
			log.WithField("email", req.Email).Info("demo user already exists")
			continue
		}
		if err != nil {
			log.WithError(err).WithField("email", req.Email).Fatal("failed to create demo user")
		}

		if _, err := routines.Get(ctx, user.ID, today); err != nil {
			log.WithError(err).Fatal("failed to create routine")
		}
		for _, t := range demoTasks(today) {
			if _, err := tasks.Create(ctx, user.ID, &t); err != nil {
				log.WithError(err).Fatal("failed to create task")
			}
		}
		for _, m := range demoMenu() {
			if _, err := menu.Create(ctx, user.ID, &m); err != nil {
				log.WithError(err).Fatal("failed to create menu item")
			}
		}
		log.WithFields(logrus.Fields{"email": req.Email, "user_id": user.ID}).Info("created demo user")
	}

	log.WithField("password", demoPassword).Info("demo users ready")
}

func strPtr(s string) *string { return &s }

func demoTasks(date string) []types.CreateTaskRequest {
	return []types.CreateTaskRequest{
		{Title: "Plan the week", Date: date, Time: strPtr("09:00"), Priority: true, Category: models.CategoryWork},
		{Title: "Read one chapter", Date: date, Time: strPtr("21:00"), Category: models.CategoryLearn},
		{Title: "Send invoice", Date: date, Category: models.CategoryCompany},
		{Title: "Stretch", Date: date, Time: strPtr("07:30"), Category: models.CategoryHealth, Repeat: strPtr(models.RepeatDaily)},
	}
}

func demoMenu() []types.MenuItemRequest {
	return []types.MenuItemRequest{
		{FoodName: "boiled eggs", Quantity: 3, Unit: "piece", Time: "08:30"},
		{FoodName: "oats", Quantity: 1, Unit: "bowl", Time: "08:30"},
		{FoodName: "chicken breast", Quantity: 2, Unit: "100g", Time: "13:30"},
		{FoodName: "rice", Quantity: 1, Unit: "cup", Time: "13:30"},
		{FoodName: "paneer", Quantity: 1, Unit: "100g", Time: "20:00"},
	}
}
