package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/database"
	"github.com/accountd/accountd/internal/email"
	"github.com/accountd/accountd/internal/handler"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/middleware"
	"github.com/accountd/accountd/internal/repository"
	"github.com/accountd/accountd/internal/router"
	"github.com/accountd/accountd/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting accountd server")

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("connected to Redis")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Initialize token service
	tokenSvc, err := auth.NewTokenService(cfg.Security.Tokens)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}
	if cfg.Security.Tokens.SigningKeySeed == "" {
		log.Warn().Msg("no signing key seed configured, using an ephemeral key; tokens will not survive a restart")
	}

	// Initialize email sender
	sender := newSender(cfg, log)

	// Initialize services
	verificationSvc := service.NewVerificationService(rdb, userRepo, auditRepo, sender, cfg.Verification, cfg.Email.AppName, log)
	userSvc := service.NewUserService(userRepo, auditRepo, tokenSvc, verificationSvc, cfg.Security.Password, log)

	// Initialize handlers
	h := handler.New(db, rdb, log, cfg, userSvc, verificationSvc)

	// Initialize middleware
	mw := middleware.New(rdb, log, cfg)

	// Set up router
	r := router.New(h, mw, tokenSvc)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newSender selects the email provider. Gmail is used only when fully
// configured; anything else falls back to the log provider.
func newSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if cfg.Email.Provider != "gmail" {
		return email.NewLogSender(log)
	}

	ctx := context.Background()
	g := cfg.Email.Gmail

	if g.CredentialsJSON != "" {
		sender, err := email.NewGmailSender(ctx, email.GmailConfig{
			CredentialsJSON: g.CredentialsJSON,
			SenderAddress:   g.SenderAddress,
			SenderName:      g.SenderName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Gmail sender")
		}
		return sender
	}

	if g.ClientID != "" && g.ClientSecret != "" && g.RefreshToken != "" {
		sender, err := email.NewGmailSenderWithToken(ctx, g.ClientID, g.ClientSecret, g.RefreshToken, g.SenderAddress, g.SenderName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Gmail sender")
		}
		return sender
	}

	log.Warn().Msg("gmail provider selected but not configured, falling back to log provider")
	return email.NewLogSender(log)
}
