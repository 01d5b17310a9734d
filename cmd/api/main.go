package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/serviceyard/serviceyard-backend/internal/config"
	"github.com/serviceyard/serviceyard-backend/internal/middleware"
	"github.com/serviceyard/serviceyard-backend/internal/modules/auth"
	"github.com/serviceyard/serviceyard-backend/internal/modules/baseinfo"
	"github.com/serviceyard/serviceyard-backend/internal/modules/offer"
	"github.com/serviceyard/serviceyard-backend/internal/modules/order"
	"github.com/serviceyard/serviceyard-backend/internal/modules/profile"
	"github.com/serviceyard/serviceyard-backend/internal/modules/review"
	"github.com/serviceyard/serviceyard-backend/internal/platform/database"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("failed to apply migrations")
	}
	logger.Info("connected to database, schema up to date")

	// ── Identity ────────────────────────────────────────────
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo)
	authService := auth.NewService(profileService, profileRepo, cfg.JWTSecret, cfg.TokenTTL)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.NewCORS(cfg.CORSAllowedOrigins).Handler)
	router.Use(middleware.NewAuthenticator(authService, profileService, logger).Handler)
	router.Use(middleware.NewGlobalRateLimiter(cfg.Throttle.Anon, cfg.Throttle.User, logger).Handler)

	loginThrottle := middleware.NewRateLimiter("login", cfg.Throttle.Login, logger).Handler
	registrationThrottle := middleware.NewRateLimiter("registration", cfg.Throttle.Registration, logger).Handler
	orderCreateThrottle := middleware.NewRateLimiter("order_create", cfg.Throttle.OrderCreate, logger).Handler

	auth.NewHandler(authService, loginThrottle, registrationThrottle).RegisterRoutes(router)
	profile.NewHandler(profileService).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	offerRepo := offer.NewPostgresRepository(db)
	offerService := offer.NewService(offerRepo)
	offer.NewHandler(offerService, cfg.Pagination).RegisterRoutes(router)

	// ── Orders ──────────────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, profileRepo)
	order.NewHandler(orderService, orderCreateThrottle).RegisterRoutes(router)

	// ── Reviews & platform stats ────────────────────────────
	reviewRepo := review.NewPostgresRepository(db)
	reviewService := review.NewService(reviewRepo, profileRepo)
	review.NewHandler(reviewService).RegisterRoutes(router)

	baseinfoRepo := baseinfo.NewPostgresRepository(db)
	baseinfo.NewHandler(baseinfo.NewService(baseinfoRepo)).RegisterRoutes(router)

	// ── Start server ────────────────────────────────────────
	logger.WithField("port", cfg.Port).Info("api server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
