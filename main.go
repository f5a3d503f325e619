package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ThousifMd/MatchlensAI/cache"
	"github.com/ThousifMd/MatchlensAI/controllers"
	"github.com/ThousifMd/MatchlensAI/database"
	"github.com/ThousifMd/MatchlensAI/middleware"
	"github.com/ThousifMd/MatchlensAI/models"
	"github.com/ThousifMd/MatchlensAI/paypal"
	"github.com/ThousifMd/MatchlensAI/routes"
	"github.com/ThousifMd/MatchlensAI/store"
	"github.com/ThousifMd/MatchlensAI/uploader"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	// Validate required environment variables
	requiredEnvVars := []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME", "PAYPAL_CLIENT_ID", "PAYPAL_CLIENT_SECRET"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	env := strings.ToLower(os.Getenv("ENV"))
	var logger *zap.Logger
	var err error
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to the database
	db, err := database.Connect()
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	// Auto-migrate only in development to avoid accidental production schema changes
	if env == "development" {
		logger.Info("running in development mode - performing auto-migration")
		if err := db.AutoMigrate(
			&models.ProfileSubmission{},
			&models.PaymentRecord{},
		); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
	} else {
		logger.Info("running in production mode - skipping auto-migration")
	}

	submissionStore := store.NewGormStore(db)

	paypalClient := paypal.NewClient(paypal.ConfigFromEnv(), logger)

	cloudinaryBackend, err := uploader.NewCloudinaryUploader()
	if err != nil {
		logger.Fatal("failed to init cloudinary uploader", zap.Error(err))
	}
	photoUploader := uploader.NewPhotoUploader(cloudinaryBackend, logger)

	// Optional receipt cache; disabled when REDIS_ADDR is unset or unreachable.
	receipts := cache.NewReceiptCache(logger)
	defer receipts.Close()

	verifyCapture := os.Getenv("PAYPAL_VERIFY_CAPTURE") != "false"

	intake := controllers.NewIntakeController(submissionStore, paypalClient, photoUploader, receipts, logger, verifyCapture)
	reads := controllers.NewReadController(submissionStore, logger)
	admin := controllers.NewAdminController(submissionStore, logger)

	router := routes.InitRouter(intake, reads, admin)

	// Wrap router with global middleware in recommended order
	// Logging -> Security headers -> Request ID -> Max Body -> Recovery
	handler := middleware.RequestLogMiddleware(logger)(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.RecoveryMiddleware(logger)(router),
				),
			),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
