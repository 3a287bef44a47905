//	@title			Fuel Logbook API
//	@version		1.0
//	@description	Backend for the Fuel Logbook: vehicle fuel tracking with receipts and SARS-ready exports.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/fuelbook/service/docs/swagger"
	"github.com/fuelbook/service/internal/auth"
	"github.com/fuelbook/service/internal/config"
	"github.com/fuelbook/service/internal/db"
	"github.com/fuelbook/service/internal/export"
	"github.com/fuelbook/service/internal/fuellog"
	"github.com/fuelbook/service/internal/mail"
	appMiddleware "github.com/fuelbook/service/internal/middleware"
	"github.com/fuelbook/service/internal/receipt"
	"github.com/fuelbook/service/internal/response"
	"github.com/fuelbook/service/internal/storage"
	"github.com/fuelbook/service/internal/user"
	"github.com/fuelbook/service/internal/vehicle"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init failed")
	}

	mailer, err := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	if err != nil {
		log.Fatal().Err(err).Msg("smtp init failed")
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	authSvc := auth.NewService(userRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	vehicleRepo := vehicle.NewRepository(pool)
	vehicleSvc := vehicle.NewService(vehicleRepo)
	vehicleHandler := vehicle.NewHandler(vehicleSvc)

	fuellogRepo := fuellog.NewRepository(pool)
	fuellogSvc := fuellog.NewService(fuellogRepo, vehicleSvc, store)
	fuellogHandler := fuellog.NewHandler(fuellogSvc)

	receiptHandler := receipt.NewHandler(store, fuellogSvc)
	exportHandler := export.NewHandler(fuellogSvc, vehicleSvc, mailer)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Everything below requires a valid session
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

			r.Route("/vehicles", func(r chi.Router) {
				r.Post("/", vehicleHandler.Create)
				r.Get("/", vehicleHandler.List)
				r.Get("/{id}", vehicleHandler.Get)
				r.Delete("/{id}", vehicleHandler.Delete)
			})

			r.Route("/fuel-logs", func(r chi.Router) {
				r.Post("/", fuellogHandler.Create)
				r.Get("/", fuellogHandler.List)
				r.Get("/{id}", fuellogHandler.Get)
				r.Delete("/{id}", fuellogHandler.Delete)
				r.Patch("/{id}/lock", fuellogHandler.SetLock)
			})

			r.Route("/receipts", func(r chi.Router) {
				r.Post("/", receiptHandler.Upload)
				r.Post("/delete", receiptHandler.Delete)
				r.Get("/{id}/url", receiptHandler.SignedURL)
			})

			r.Route("/exports", func(r chi.Router) {
				r.Post("/email", exportHandler.Email)
				r.Post("/download", exportHandler.Download)
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			response.NotFound(w, "route not found")
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
