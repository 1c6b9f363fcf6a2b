package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/config"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/internal/infrastructure/database"
	"github.com/sangkips/receipts-api/internal/infrastructure/document"
	infraRepo "github.com/sangkips/receipts-api/internal/infrastructure/repository"
	"github.com/sangkips/receipts-api/internal/presentation/http/handler"
	"github.com/sangkips/receipts-api/internal/presentation/http/middleware"
	"github.com/sangkips/receipts-api/internal/presentation/http/routes"
	"github.com/sangkips/receipts-api/internal/worker"
	"github.com/sangkips/receipts-api/pkg/email"
	"github.com/sangkips/receipts-api/pkg/logger"
	"github.com/sangkips/receipts-api/pkg/oauth"
	"github.com/sangkips/receipts-api/pkg/printer"
	"github.com/sangkips/receipts-api/pkg/utils"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     !cfg.App.IsProduction(),
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   true,
	}); err != nil {
		log.Fatal().Err(err).Msg("invalid log configuration")
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.App.Env,
			Release:     cfg.App.Name + "@" + version,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			log.Error().Err(err).Msg("sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get database handle")
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	if err := database.SeedAdmin(db, &cfg.Admin); err != nil {
		log.Warn().Err(err).Msg("failed to seed admin user")
	}

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool := worker.NewPool(100)
	pool.Start(ctx, 2)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	userRepo := infraRepo.NewUserRepository(db)
	receiptRepo := infraRepo.NewReceiptRepository(db)
	settingsRepo := infraRepo.NewSettingsRepository(db)
	templateRepo := infraRepo.NewTemplateRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		AppName:      cfg.App.Name,
	})
	if !emailService.IsConfigured() {
		log.Info().Msg("SMTP not configured, email features disabled")
	}

	googleOAuth := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
		StateSecret:        cfg.JWT.Secret,
	})

	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, printing disabled")
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	notificationService := service.NewNotificationService(emailService, pool, cfg.Email.AdminEmail)
	authService := service.NewAuthService(userRepo, jwtManager, notificationService)
	numberer := service.NewReceiptNumberer(receiptRepo, cfg.Receipt.Prefix, cfg.Receipt.NumberDigits)
	receiptService := service.NewReceiptService(receiptRepo, numberer)
	settingsService := service.NewSettingsService(settingsRepo)
	templateService := service.NewTemplateService(templateRepo)
	backupService := service.NewBackupService(receiptRepo)
	documentService := service.NewDocumentService(receiptService, settingsService, document.Renderer{}, emailService)
	printerService := service.NewPrinterService(thermalPrinter, receiptService, settingsService, cfg.Printer.CharWidth)

	go purgeIdempotencyKeys(ctx, pool, idempotencyRepo, time.Hour)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService, googleOAuth),
		Receipt:  handler.NewReceiptHandler(receiptService, documentService, printerService),
		Settings: handler.NewSettingsHandler(settingsService),
		Template: handler.NewTemplateHandler(templateService),
		Backup:   handler.NewBackupHandler(backupService),
		Printer:  handler.NewPrinterHandler(printerService),
		Health:   handler.NewHealthHandler(sqlDB, cfg.App.Name, version),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(max(cfg.RateLimit.Duration, 1)),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Users:           authService,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Str("env", cfg.App.Env).Msgf("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Let queued notifications finish before the database closes.
	pool.Stop()
	cancel()
}

// purgeIdempotencyKeys queues removal of expired idempotency keys every interval
func purgeIdempotencyKeys(ctx context.Context, pool *worker.Pool, repo repository.IdempotencyRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := pool.Submit(worker.Job{
				Name: "purge-idempotency-keys",
				Run: func(ctx context.Context) error {
					n, err := repo.DeleteExpired(ctx)
					if err == nil && n > 0 {
						log.Info().Int64("deleted", n).Msg("purged expired idempotency keys")
					}
					return err
				},
			})
			if err != nil {
				log.Warn().Err(err).Msg("failed to queue idempotency key purge")
			}
		}
	}
}
