package main

import (
	"github.com/itwoqa/bugtracker/internal/config"
	"github.com/itwoqa/bugtracker/internal/handlers"
	"github.com/itwoqa/bugtracker/internal/models"
	"github.com/itwoqa/bugtracker/internal/services"
	"github.com/itwoqa/bugtracker/internal/utils"
	"github.com/itwoqa/bugtracker/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg            *config.Config
	hub            *services.EventHub
	storage        *services.Storage
	teamsService   *services.TeamsService
	cleanupService *services.CleanupService
	taskQueue      services.TaskQueue
	worker         *services.Worker
	authHandler    *handlers.AuthHandler
	bugHandler     *handlers.BugHandler
	commentHandler *handlers.CommentHandler
	sseHandler     *handlers.SSEHandler
	uploadHandler  *handlers.UploadHandler
	exportHandler  *handlers.ExportHandler
	teamsHandler   *handlers.TeamsHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
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

	// Seed default data (ticket sequence must exist before the first bug)
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	storage, err := services.NewStorage(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatalf("Failed to initialize upload storage: %v", err)
	}

	hub := services.GetEventHub()
	tickets := services.NewTicketService(db, &cfg.Tickets)
	bugService := services.NewBugService(db, tickets, hub)
	commentService := services.NewCommentService(db, hub)
	exportService := services.NewExportService(db)
	teamsService := services.NewTeamsService(&cfg.Teams, bugService, storage)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(teamsService.ProcessTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(teamsService.ProcessTask)
			worker.Start()
		}
	}

	// Start the nightly orphaned-upload sweep
	cleanupService := services.NewCleanupService(db, storage)
	if err := cleanupService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start upload sweep scheduler")
	}

	// Create default admin user
	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:            cfg,
		hub:            hub,
		storage:        storage,
		teamsService:   teamsService,
		cleanupService: cleanupService,
		taskQueue:      taskQueue,
		worker:         worker,
		authHandler:    authHandler,
		bugHandler:     handlers.NewBugHandler(bugService, storage, &cfg.Uploads),
		commentHandler: handlers.NewCommentHandler(commentService),
		sseHandler:     handlers.NewSSEHandler(hub),
		uploadHandler:  handlers.NewUploadHandler(storage, &cfg.Uploads),
		exportHandler:  handlers.NewExportHandler(exportService),
		teamsHandler:   handlers.NewTeamsHandler(teamsService, taskQueue),
		healthHandler:  handlers.NewHealthHandler(hub),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanupService.Stop()

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
