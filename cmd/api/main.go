package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aimarketing/accounts/internal/handlers"
	"github.com/aimarketing/accounts/internal/mailer"
	"github.com/aimarketing/accounts/internal/repository"
	"github.com/aimarketing/accounts/internal/service"
	"github.com/aimarketing/accounts/pkg/config"
	"github.com/aimarketing/accounts/pkg/database"
	"github.com/aimarketing/accounts/pkg/events"
	"github.com/aimarketing/accounts/pkg/logger"
	mw "github.com/aimarketing/accounts/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis backs the per-IP rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	verifyRepo := repository.NewVerifyRepository(pool)
	favouriteRepo := repository.NewFavouriteRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Pick the mailer
	var mailSvc mailer.Service
	switch {
	case cfg.Email.DevMode:
		mailSvc = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mailSvc = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.SMTPFromName, cfg.Email.SMTPFrom)
	default:
		mailSvc = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}

	// Initialize services
	accountService := service.NewAccountService(userRepo, profileRepo, verifyRepo, mailSvc, eventBus, cfg)
	profileService := service.NewProfileService(profileRepo, favouriteRepo, orderRepo, resourceRepo, eventBus)
	favouriteService := service.NewFavouriteService(favouriteRepo, profileRepo, eventBus)

	// Initialize handlers
	h := handlers.New(accountService, profileService, favouriteService, resourceRepo, rateLimitRepo, cfg)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("accounts"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Site.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/v1", h.Routes())

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down accounts service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Accounts service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting accounts service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Accounts service error", "error", err)
		os.Exit(1)
	}
}
