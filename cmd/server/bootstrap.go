package main

import (
	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/internal/utils"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

// appServices holds the long-lived services wired at startup.
type appServices struct {
	activityService *services.ActivityService
	emailService    *services.EmailService
	cleanupService  *services.CleanupService
	taskQueue       services.TaskQueue
	worker          *services.Worker
}

// bootstrap initializes all application dependencies: database, mail
// pipeline, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	activityService := services.NewActivityService(db)
	emailService := services.NewEmailService(cfg)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.Send)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.Send)
			worker.Start()
		}
	}

	// Start the invite janitor
	inviteService := services.NewInviteService(db, emailService, taskQueue)
	cleanupService := services.NewCleanupService(inviteService)
	cleanupService.StartScheduler()

	return &appServices{
		activityService: activityService,
		emailService:    emailService,
		cleanupService:  cleanupService,
		taskQueue:       taskQueue,
		worker:          worker,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanupService.StopScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
