package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/cache"
	"github.com/fairyhunter13/restoboost/internal/catalog"
	"github.com/fairyhunter13/restoboost/internal/config"
	"github.com/fairyhunter13/restoboost/internal/handler"
	"github.com/fairyhunter13/restoboost/internal/imaging"
	"github.com/fairyhunter13/restoboost/internal/metrics"
	"github.com/fairyhunter13/restoboost/internal/middleware"
	"github.com/fairyhunter13/restoboost/internal/repository"
	"github.com/fairyhunter13/restoboost/internal/service"
	"github.com/fairyhunter13/restoboost/internal/storage"
	"github.com/fairyhunter13/restoboost/internal/timeslot"
	"github.com/fairyhunter13/restoboost/internal/validator"
	"github.com/fairyhunter13/restoboost/migrations"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), database.DefaultRetryOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.Migrate {
		if _, err := database.Migrate(ctx, pool, migrations.FS); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load booking timezone")
	}

	// Redis is optional. It backs the slot cache and is part of the health check.
	var rdb *redis.Client
	var slotCache service.SlotCache
	var cachePinger handler.Pinger
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sc := cache.NewSlotCache(rdb, cfg.Booking.SlotCacheTTL)
		if err := sc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable at startup")
		}
		cachePinger = sc
		if cfg.Booking.SlotCacheTTL > 0 {
			slotCache = sc
		}
	}

	photoStore, err := storage.NewLocalStore(cfg.Storage.PhotoDir, cfg.Storage.PublicPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare photo storage")
	}

	metrics.Register()

	app := fiber.New(fiber.Config{
		AppName:      "RestoBoost",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.FrontendURL,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(metrics.Middleware())

	validate := validator.New()

	restaurantRepo := repository.NewRestaurantRepository(pool)
	ruleRepo := repository.NewDiscountRuleRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	generator := timeslot.NewGenerator(cfg.Booking.SlotStepMinutes, timeslot.OverlapPolicy(cfg.Booking.OverlapPolicy), cfg.Booking.DefaultCapacity)
	availability := service.NewAvailabilityService(pool, ruleRepo, bookingRepo, generator, slotCache, loc)

	restaurantService := service.NewRestaurantService(pool, restaurantRepo, ruleRepo, availability, slotCache, photoStore,
		cfg.Booking.RuleValidityDays, cfg.Booking.DefaultCapacity)
	photoService := service.NewPhotoService(pool, restaurantRepo, photoStore,
		imaging.NewProcessor(cfg.Storage.ImageMaxWidth, cfg.Storage.ImageQuality), cfg.Storage.MaxImageBytes())
	discountService := service.NewDiscountService(pool, ruleRepo, slotCache, cfg.Booking.RejectOverlaps)
	bookingService := service.NewBookingService(pool, restaurantRepo, bookingRepo, availability, slotCache)
	authService := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash)
	dashboardService := service.NewDashboardService(restaurantRepo, bookingRepo, availability)
	categoryService := service.NewCategoryService(restaurantRepo, catalog.Default())

	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn().Msg("AUTH_ADMIN_PASSWORD_HASH is empty, admin login is disabled")
	}

	app.Static(cfg.Storage.PublicPrefix, cfg.Storage.PhotoDir)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	handler.RegisterRoutes(app, handler.Handlers{
		Restaurants: handler.NewRestaurantHandler(restaurantService, photoService, validate, availability.Today,
			handler.RangeDefaults{Days: cfg.Booking.DefaultRangeDays, MaxDays: cfg.Booking.MaxRangeDays}),
		Discounts: handler.NewDiscountHandler(discountService, validate),
		Bookings:  handler.NewBookingHandler(bookingService, availability, validate),
		Admin:     handler.NewAdminHandler(authService, dashboardService, categoryService, validate),
		Health:    handler.NewHealthHandler(pool, cachePinger, version),
	}, middleware.AdminAuth(authService), limiter.Handler())

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("version", version).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close stores AFTER server shutdown (even if shutdown timed out)
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
