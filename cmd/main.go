package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"

	"movie-recommender/internal/config"
	"movie-recommender/internal/database"
	"movie-recommender/internal/handler"
	"movie-recommender/internal/middleware"
	"movie-recommender/internal/recommender"
	"movie-recommender/internal/repository"
	"movie-recommender/internal/service"
	"movie-recommender/internal/tmdb"
)

func main() {
	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
	}

	// External catalog client
	catalog := tmdb.NewClient(cfg.TMDB)

	// Scoring engine
	engine := recommender.New(recommender.Config{
		CollabWeight:   cfg.Engine.CollabWeight,
		ContentWeight:  cfg.Engine.ContentWeight,
		LikedThreshold: cfg.Engine.LikedThreshold,
	})

	// Repositories
	movieRepo := repository.NewMovieRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	userRepo := repository.NewUserRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Services
	movieSvc := service.NewMovieService(movieRepo, catalog, rdb)
	userSvc := service.NewUserService(userRepo, ratingRepo, movieSvc, rdb)
	recSvc := service.NewRecommendationService(engine, ratingRepo, movieRepo, userRepo, snapshotRepo, catalog, rdb)

	// Handlers
	movieHandler := handler.NewMovieHandler(movieSvc)
	userHandler := handler.NewUserHandler(userSvc)
	recHandler := handler.NewRecommendationHandler(recSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Movie Recommender",
		ServerHeader: "Movie-Recommender",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(fiberRecover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	rateLimiter := middleware.NewRateLimiter(rdb, cfg.Server.RateLimitMax, cfg.Server.RateLimitWindowSeconds)
	app.Use(rateLimiter.Handler())
	app.Use(middleware.Auth())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	// Routes
	app.Get("/health", movieHandler.Health)

	api := app.Group("/api/v1")

	api.Get("/movies/search", movieHandler.SearchMovies)
	api.Get("/movies/:id", movieHandler.GetMovie)
	api.Post("/admin/sync", movieHandler.SyncMovies)

	api.Post("/users", userHandler.CreateUser)
	api.Get("/users/:id", userHandler.GetUser)
	api.Get("/users/:id/preferences", userHandler.GetPreference)
	api.Put("/users/:id/preferences", userHandler.SetPreference)
	api.Post("/users/:id/ratings", userHandler.RateMovie)
	api.Get("/users/:id/ratings", userHandler.ListRatings)

	api.Get("/users/:id/recommendations", recHandler.GetRecommendations)
	api.Get("/users/:id/recommendations/history", recHandler.GetHistory)
	api.Get("/users/:id/genres/favorites", recHandler.GetFavoriteGenres)
	api.Get("/genres", movieHandler.ListGenres)
	api.Get("/moods", recHandler.GetMoods)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Server.Port
		slog.Info("starting movie recommender", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down movie recommender...")
	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
