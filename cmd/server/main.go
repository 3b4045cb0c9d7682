package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/brunogcp/SafeGuard/internal/api"
	"github.com/brunogcp/SafeGuard/internal/config"
	"github.com/brunogcp/SafeGuard/internal/crypto"
	"github.com/brunogcp/SafeGuard/internal/db"
	"github.com/brunogcp/SafeGuard/internal/mail"
	"github.com/brunogcp/SafeGuard/internal/services"
	"github.com/brunogcp/SafeGuard/internal/storage"
	"github.com/brunogcp/SafeGuard/internal/token"
	"github.com/brunogcp/SafeGuard/pkg/logger"
	"github.com/brunogcp/SafeGuard/pkg/metrics"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(zapLogger)

	// Key material is loaded exactly once; a missing secret or signing key
	// aborts startup rather than running without encryption.
	material, err := crypto.LoadMaterial(cfg.Security.EncryptionSecret, cfg.Security.SigningKeyPath)
	if err != nil {
		zapLogger.Fatal("Failed to load key material", zap.Error(err))
	}

	issuer, err := token.NewIssuer(cfg.Security.JwtSecret, cfg.Security.TokenTTL)
	if err != nil {
		zapLogger.Fatal("Failed to initialize token issuer", zap.Error(err))
	}

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	store, err := storage.NewFileStore(cfg.Storage.UploadDir)
	if err != nil {
		zapLogger.Fatal("Failed to initialize file store", zap.Error(err))
	}

	metricsCollector := metrics.NewMetricsCollector()
	mailer := mail.NewSMTPMailer(
		cfg.Smtp.Host,
		cfg.Smtp.Port,
		cfg.Smtp.Username,
		cfg.Smtp.Password,
		cfg.Smtp.From,
		zapLogger,
	)

	documentService := services.NewDocumentService(database, material, store, zapLogger, metricsCollector)
	authService := services.NewAuthService(database, mailer, issuer, zapLogger, metricsCollector)

	router := api.NewRouter(zapLogger, metricsCollector, authService, documentService, issuer, cfg.Storage.MaxFileSize)
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	sqlDB, err := database.DB()
	if err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}
