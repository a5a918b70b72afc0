package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
	apiv1 "github.com/ManuelReschke/CleanCity/internal/api/v1"
	"github.com/ManuelReschke/CleanCity/internal/pkg/cache"
	"github.com/ManuelReschke/CleanCity/internal/pkg/config"
	"github.com/ManuelReschke/CleanCity/internal/pkg/database"
	"github.com/ManuelReschke/CleanCity/internal/pkg/env"
	"github.com/ManuelReschke/CleanCity/internal/pkg/jobqueue"
	"github.com/ManuelReschke/CleanCity/internal/pkg/keylock"
	"github.com/ManuelReschke/CleanCity/internal/pkg/lifecycle"
	"github.com/ManuelReschke/CleanCity/internal/pkg/middleware"
	"github.com/ManuelReschke/CleanCity/internal/pkg/ratelimit"
	"github.com/ManuelReschke/CleanCity/internal/pkg/rewards"
	"github.com/ManuelReschke/CleanCity/internal/pkg/router"
	"github.com/ManuelReschke/CleanCity/internal/pkg/statistics"
	"github.com/ManuelReschke/CleanCity/internal/pkg/tourplanner"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zones"
)

func main() {
	app := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		jobqueue.GetManager().Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown failed: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	factory := repository.GetGlobalFactory()
	repos := factory.GetRepositories()
	locks := keylock.New()

	// job queue delivers in-app notifications and refreshes the dashboard
	manager := jobqueue.GetManager()
	queue := manager.GetQueue()
	queue.SetNotificationStore(repos.Notification, wantsReviewNotifications)
	stats := statistics.NewService(repos, nil)
	manager.SetStatsRefresher(stats.Refresh, time.Minute)
	manager.Start()

	server := apiv1.NewAPIServer(apiv1.Services{
		Repos:   repos,
		Zones:   zones.NewService(repos, locks),
		Reports: lifecycle.NewService(repos, factory, rewards.NewEngine(cfg), locks, queue),
		Tours:   tourplanner.NewService(repos, factory, locks),
		Stats:   stats,
		Queue:   factory.GetQueueRepository(),
	})

	app := fiber.New(fiber.Config{
		AppName:   "CleanCity",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	if origins := env.GetEnv("CORS_ALLOW_ORIGINS", ""); origins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Authorization, X-API-Key",
			MaxAge:       int((12 * time.Hour).Seconds()),
		}))
	}

	metricsUsers := map[string]string{}
	if pw := env.GetEnv("METRICS_PASSWORD", ""); pw != "" {
		metricsUsers[env.GetEnv("METRICS_USER", "admin")] = pw
	}

	// fiber monitor page
	if len(metricsUsers) > 0 {
		app.Get("/monitor", basicauth.New(basicauth.Config{Users: metricsUsers}), monitor.New())
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	if _, err := os.Stat(openAPICfg.FilePath); err == nil {
		app.Use(swagger.New(openAPICfg))
	}

	// ROUTER
	system := router.NewSystemRouter(map[string]router.HealthCheck{
		"database": func() error {
			sqlDB, err := database.GetDB().DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
		"cache": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return cache.Ping(ctx)
		},
	}, metricsUsers)
	api := router.NewApiRouter(server, middleware.APIKeyAuthMiddleware(), ratelimit.NewStorage())
	router.InstallRouter(app, system, api)

	return app
}

// wantsReviewNotifications reads the opt-out flag from the user settings.
func wantsReviewNotifications(userID uint) bool {
	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userID)
	if err != nil {
		log.Printf("Failed to load settings of user %d: %v", userID, err)
		return true
	}
	return settings.NotifyOnReview
}
