package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/rigaestates/listings-api/internal/access"
	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/gate"
	"github.com/rigaestates/listings-api/internal/http/handlers"
	imw "github.com/rigaestates/listings-api/internal/http/middleware"
	"github.com/rigaestates/listings-api/internal/platform/mailer"
	"github.com/rigaestates/listings-api/internal/platform/ratelimit"
	"github.com/rigaestates/listings-api/internal/repo/postgres"
	"github.com/rigaestates/listings-api/internal/session"
	"github.com/rigaestates/listings-api/pkg/config"
	"github.com/rigaestates/listings-api/pkg/database"
	"github.com/rigaestates/listings-api/pkg/events"
	"github.com/rigaestates/listings-api/pkg/logger"
	mw "github.com/rigaestates/listings-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, cfg.Database.URL); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Event bus
	var bus events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		natsBus, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	}

	// Rate limiter
	var limiter ratelimit.Limiter
	limiter, err = ratelimit.NewRedisLimiter(cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
		limiter = ratelimit.NoopLimiter{}
	}

	// Repositories
	accessRepo := postgres.NewAccessRepo(pool)
	propertyRepo := postgres.NewPropertyRepo(pool)
	staffRepo := postgres.NewStaffRepo(pool)

	// Services
	accessService := access.NewService(accessRepo, pickMailer(cfg), bus, cfg)
	listingGate := gate.New(accessRepo, propertyRepo)
	remembered := session.New(cfg.Auth.RememberCookie, cfg.Auth.JWTSecret,
		session.WithSecure(cfg.Auth.CookieSecure))

	h := handlers.New(accessService, listingGate, remembered, staffRepo, propertyRepo, bus, cfg)

	// Router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("listings-api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.PublicURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(imw.AccessRateLimit(limiter, cfg.Access.RequestsPerMin))
			r.Post("/access/request", h.RequestAccess)
			r.Post("/access/verify", h.VerifyCode)
			r.Get("/access/magic", h.MagicLink)
		})

		r.Get("/listings", h.Listings)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.StaffLogin)
			r.Group(func(r chi.Router) {
				r.Use(imw.RequireStaff(cfg.Auth.JWTSecret, domain.RoleAgent))
				r.Post("/properties", h.CreateProperty)
				r.Patch("/properties/{id}/visibility", h.SetPropertyVisibility)
			})
		})
	})

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

		logger.Info("Shutting down listings API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting listings API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func pickMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
		)
	}
}
