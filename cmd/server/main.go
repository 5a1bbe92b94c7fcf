package main

import (
	"alcyxob/routine-progress/internal/api"
	"alcyxob/routine-progress/internal/config"
	"alcyxob/routine-progress/internal/logger"
	"alcyxob/routine-progress/internal/repository"
	"alcyxob/routine-progress/internal/repository/memory"
	"alcyxob/routine-progress/internal/repository/mongo"
	"alcyxob/routine-progress/internal/service"
	"alcyxob/routine-progress/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// repositories bundles one storage backend's implementations.
type repositories struct {
	configs  repository.PlanConfigRepository
	states   repository.WeeklyStateRepository
	tpls     repository.TemplateRepository
	routines repository.TraineeRoutineRepository
	logs     repository.TrainingLogRepository
	exports  repository.ExportRepository
	tx       repository.Transactor
	close    func()
}

// openRepositories connects the configured backend.
func openRepositories(cfg config.DatabaseConfig, log *logger.Logger) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			configs:  memory.NewPlanConfigRepository(store),
			states:   memory.NewWeeklyStateRepository(store),
			tpls:     memory.NewTemplateRepository(store),
			routines: memory.NewTraineeRoutineRepository(store),
			logs:     memory.NewTrainingLogRepository(store),
			exports:  memory.NewExportRepository(store),
			tx:       store,
			close:    func() {},
		}, nil
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	appDB := dbClient.Database(cfg.Name)
	log.Info("Database connection established", "database", cfg.Name)

	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Error("Index creation failed", "error", err)
			return
		}
		log.Info("Index creation process completed")
	}()

	return &repositories{
		configs:  mongo.NewMongoPlanConfigRepository(appDB),
		states:   mongo.NewMongoWeeklyStateRepository(appDB),
		tpls:     mongo.NewMongoTemplateRepository(appDB),
		routines: mongo.NewMongoTraineeRoutineRepository(appDB),
		logs:     mongo.NewMongoTrainingLogRepository(appDB),
		exports:  mongo.NewMongoExportRepository(appDB),
		tx:       mongo.NewMongoTransactor(dbClient, appDB),
		close: func() {
			log.Info("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Error("Failed to disconnect MongoDB", "error", err)
			}
		},
	}, nil
}

// @title Routine Progress API
// @version 1.0
// @description Weekly training plans, routine snapshots and session progression.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded", "driver", cfg.Database.Driver, "address", cfg.Server.Address)

	location, err := cfg.Plan.Location()
	if err != nil {
		log.Fatal("Invalid plan timezone", "error", err)
	}

	// --- Storage backend ---
	repos, err := openRepositories(cfg.Database, log)
	if err != nil {
		log.Fatal("Could not open storage", "error", err)
	}
	defer repos.close()

	// --- Export storage (optional) ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", "error", err)
		}
	} else {
		log.Warn("s3.bucket_name not set; history export is disabled")
	}

	// --- Initialize Services ---
	settings := service.Settings{
		DefaultBaseDays: cfg.Plan.DefaultBaseDays,
		MinBaseDays:     cfg.Plan.MinBaseDays,
		MaxBaseDays:     cfg.Plan.MaxBaseDays,
		Location:        location,
	}
	planService := service.NewPlanService(repos.configs, repos.states, repos.routines, repos.tx, settings, log)
	routineService := service.NewRoutineService(repos.tpls, repos.routines, repos.states, repos.tx, settings, log)
	sessionService := service.NewSessionService(repos.configs, repos.states, repos.tpls, repos.routines, repos.logs, repos.tx, settings, log)
	metricsService := service.NewMetricsService(repos.logs, repos.routines, repos.states, settings)
	exportService := service.NewExportService(sessionService, repos.exports, fileStorage, cfg.S3.URLExpiry, settings, log)

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log), api.CORS(cfg.Server.CORSOrigins))
	api.SetupRoutes(router, cfg.JWT, planService, routineService, sessionService, metricsService, exportService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	log.Info("Server exiting")
}
