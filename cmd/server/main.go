// Package main wires the application together and runs the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"joinify/config"
	"joinify/internal/adapters/auth"
	"joinify/internal/adapters/email"
	delivery "joinify/internal/delivery/http"
	"joinify/internal/delivery/http/controllers"
	"joinify/internal/delivery/http/middleware"
	"joinify/internal/repository/postgres"
	"joinify/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// @title Joinify API
// @version 1.0
// @description Event RSVP service with capacity-bounded admission.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("migration failed", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWTManager(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer setup failed", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	authSvc := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry)
	userSvc := services.NewUserService(userRepo)
	eventSvc := services.NewEventService(userRepo, eventRepo)
	rsvpSvc := services.NewRSVPService(userRepo, eventRepo, rsvpRepo, mailer, renderer, logger)

	// Controllers
	authController := controllers.NewAuthController(logger, authSvc)
	userController := controllers.NewUserController(logger, userSvc)
	eventController := controllers.NewEventController(logger, eventSvc)
	rsvpController := controllers.NewRSVPController(logger, rsvpSvc)

	mux := delivery.NewRouter(authController, userController, eventController, rsvpController, tokens)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
