package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"app/internal/api/v1/handler"
	"app/internal/auth"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/migrations"
	"app/internal/repository"
	"app/internal/service"
	"app/internal/weather"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New builds the HTTP handler and its backing connections. The returned pool
// is nil when no database is configured; endpoints that need one answer 503.
func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initializing")

	// 1. Open DB connection and run migrations. The app still starts without a
	// database: demo auth and weather endpoints keep working, everything
	// backed by storage reports 503.
	var pool *pgxpool.Pool
	if cfg.DBConnectionString != "" {
		migDB, err := sql.Open("pgx", cfg.DBConnectionString)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Run(migDB, cfg.MigrationsPath); err != nil {
			migDB.Close()
			return nil, nil, err
		}
		migDB.Close()

		pool, err = pgxpool.New(context.Background(), cfg.DBConnectionString)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Msg("Database connection successful")
	} else {
		logger.Warn().Msg("No database configured, storage-backed endpoints will return 503")
	}

	// 2. Redis forecast cache (optional)
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	// 3. Validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 4. Repositories & services
	var (
		userRepo       repository.UserRepository
		favoriteRepo   repository.FavoriteRepository
		userSvc        service.UserService
		entitlementSvc service.EntitlementService
		favoriteSvc    service.FavoriteService
		checkoutSvc    service.CheckoutService
		stripeSvc      *service.StripeService
	)
	if pool != nil {
		userRepo = repository.NewUserRepo(pool)
		favoriteRepo = repository.NewFavoriteRepo(pool)
		userSvc = service.NewUserService(userRepo)
		entitlementSvc = service.NewEntitlementService(userRepo, logger)
		favoriteSvc = service.NewFavoriteService(favoriteRepo)

		if cfg.StripeSecretKey != "" {
			stripeSvc = service.NewStripeService(cfg, logger)
			checkoutSvc = service.NewCheckoutService(stripeSvc, userRepo, entitlementSvc, logger)
			stripeSvc.AttachReconciler(checkoutSvc)
		} else {
			logger.Warn().Msg("No Stripe key configured, payment endpoints will return 503")
		}
	}

	weatherClient := weather.NewClient(cfg.GeocodingBaseURL, cfg.ForecastBaseURL)
	weatherSvc := service.NewWeatherService(weatherClient, cache, cfg.ForecastCacheTTL, logger)

	// 5. Auth facade: live backend when the provider is configured, demo
	// otherwise. The facade may still downgrade itself to demo later.
	demoBackend := auth.NewDemoBackend(cfg.JWTSecret, cfg.DemoEmail, cfg.DemoPassword, 300*time.Millisecond)
	var selected auth.Backend = demoBackend
	if cfg.LiveAuthConfigured() {
		selected = auth.NewLiveBackend(cfg.AuthProviderURL, cfg.AuthProviderKey, userRepo, logger)
	}
	facade := auth.NewFacade(selected, demoBackend, logger)
	facade.OnSessionChange(func(sess *auth.Session) {
		if sess != nil {
			logger.Info().Str("user_id", sess.UserID).Msg("Session started")
		} else {
			logger.Info().Msg("Session ended")
		}
	})
	logger.Info().Str("auth_mode", facade.Mode()).Msg("Auth backend selected")

	// 6. Handlers
	userHandler := handler.NewUserHandler(userSvc, entitlementSvc, facade, validate, logger)
	favoriteHandler := handler.NewFavoriteHandler(favoriteSvc, validate, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, validate, logger)
	authHandler := handler.NewAuthHandler(facade, validate, logger)
	weatherHandler := handler.NewWeatherHandler(weatherSvc, logger)

	// 7. Middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	// 8. Routes
	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	favoriteHandler.RegisterRoutes(apiV1Mux)
	checkoutHandler.RegisterRoutes(apiV1Mux)
	authHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	weatherHandler.RegisterRoutes(apiV1Mux)
	if stripeSvc != nil {
		apiV1Mux.Handle("/stripe/webhook", http.HandlerFunc(stripeSvc.HandleWebhook))
	}
	apiV1Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	// 9. CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger, c.Handler(mux)), pool, nil
}
