// @title Event Manager API
// @version 1.0
// @description Create, browse, search and accept events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventmanager/config"
	_ "eventmanager/docs"
	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/adapters/email"
	deliveryhttp "eventmanager/internal/delivery/http"
	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/repository/postgres"
	"eventmanager/internal/services"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.ContextTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	addressRepo := postgres.NewAddressRepository(db)
	pointRepo := postgres.NewPointRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	eventService := services.NewEventService(eventRepo, addressRepo, pointRepo, userRepo, txManager, emailService, logger, cfg.ContextTimeout)
	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(0), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry)
	userService := services.NewUserService(userRepo)

	router := deliveryhttp.NewRouter(
		controllers.NewEventController(logger, eventService, userService),
		controllers.NewAuthController(logger, authService),
		controllers.NewUserController(logger, userService),
		auth.NewJWTVerifier(cfg.JWTSecret),
		logger,
	)

	var handler http.Handler = router
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serve(srv, logger)
}

// serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(srv *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
