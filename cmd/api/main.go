package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yusufstar/photoai/internal/api"
	"github.com/yusufstar/photoai/internal/config"
	"github.com/yusufstar/photoai/internal/identity"
	"github.com/yusufstar/photoai/internal/logger"
	"github.com/yusufstar/photoai/internal/mailer"
	"github.com/yusufstar/photoai/internal/replicate"
	"github.com/yusufstar/photoai/internal/repository"
	"github.com/yusufstar/photoai/internal/service"
	"github.com/yusufstar/photoai/internal/storage"
	"github.com/yusufstar/photoai/internal/webhook"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLog := logger.NewDefault()
	logger.SetDefaultLogger(appLog)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	modelRepo := repository.NewModelRepository(db)
	imageRepo := repository.NewImageRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	// Initialize object storage (one client per bucket)
	storageCfg := &storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	}
	trainingData, err := storage.NewBucket(storageCfg, cfg.Storage.TrainingBucket)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize training storage")
	}
	gallery, err := storage.NewBucket(storageCfg, cfg.Storage.ImagesBucket)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize gallery storage")
	}

	// Initialize provider clients
	verifier, err := webhook.NewVerifier(cfg.Webhook.Secret)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize webhook verifier")
	}
	identityClient := identity.NewClient(&identity.Config{
		BaseURL:        cfg.Auth.BaseURL,
		ServiceRoleKey: cfg.Auth.ServiceRoleKey,
	})
	mailClient := mailer.NewClient(&mailer.Config{
		APIKey:  cfg.Email.APIKey,
		BaseURL: cfg.Email.BaseURL,
		From:    cfg.Email.From,
	})
	replicateClient := replicate.NewClient(&replicate.Config{
		APIToken: cfg.Replicate.APIToken,
		BaseURL:  cfg.Replicate.BaseURL,
	})

	// Initialize services
	reconciler := service.NewReconcilerService(modelRepo, identityClient, mailClient, trainingData)
	training := service.NewTrainingService(
		modelRepo,
		creditRepo,
		replicateClient,
		trainingData,
		cfg.Replicate,
		cfg.Training,
		cfg.Server.SiteURL,
	)
	generation := service.NewGenerationService(
		imageRepo,
		creditRepo,
		replicateClient,
		service.NewHTTPFetcher(),
		gallery,
	)

	// Setup router
	router := api.SetupRouter(api.Deps{
		Verifier:   verifier,
		Reconciler: reconciler,
		Training:   training,
		Generation: generation,
		Credits:    creditRepo,
	}, cfg, appLog)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLog.WithField("port", cfg.Server.Port).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Fatal("Server forced to shutdown")
	}

	appLog.Info("Server exited")
}
