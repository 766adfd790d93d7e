package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"movie-recommender/internal/models"
	"movie-recommender/internal/service"
)

// RecommendationHandler handles HTTP requests for recommendations.
type RecommendationHandler struct {
	svc *service.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// GetRecommendations generates a ranked recommendation list. An
// optional mood query parameter restricts candidates to the mood's
// genres; an unknown mood is a client error.
// GET /api/v1/users/:id/recommendations?limit=&mood=
func (h *RecommendationHandler) GetRecommendations(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid user ID"})
	}

	limit := fiber.Query(c, "limit", 10)
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	mood := c.Query("mood")

	resp, err := h.svc.Recommend(c.Context(), userID, limit, mood)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownMood):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "user not found"})
		}
		slog.Error("failed to generate recommendations", "user_id", userID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "failed to generate recommendations",
		})
	}

	return c.JSON(resp)
}

// GetFavoriteGenres returns the user's derived favorite genres.
// GET /api/v1/users/:id/genres/favorites
func (h *RecommendationHandler) GetFavoriteGenres(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid user ID"})
	}

	genres, err := h.svc.FavoriteGenres(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "user not found"})
		}
		slog.Error("failed to compute favorite genres", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to compute favorite genres",
		})
	}

	return c.JSON(fiber.Map{
		"user_id":         userID,
		"favorite_genres": genres,
	})
}

// GetHistory returns the user's last persisted recommendation scores.
// GET /api/v1/users/:id/recommendations/history
func (h *RecommendationHandler) GetHistory(c fiber.Ctx) error {
	userID := fiber.Params[int](c, "id")
	if userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid user ID"})
	}

	limit := fiber.Query(c, "limit", 10)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	snapshots, err := h.svc.Snapshots(userID, limit)
	if err != nil {
		slog.Error("failed to load recommendation history", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to load recommendation history",
		})
	}
	if snapshots == nil {
		snapshots = []models.RecommendationSnapshot{}
	}

	return c.JSON(fiber.Map{
		"user_id":   userID,
		"snapshots": snapshots,
	})
}

// GetMoods lists the valid mood values and their genre mappings.
// GET /api/v1/moods
func (h *RecommendationHandler) GetMoods(c fiber.Ctx) error {
	moods := make([]fiber.Map, 0)
	for _, m := range models.Moods() {
		moods = append(moods, fiber.Map{
			"mood":      m,
			"genre_ids": m.GenreIDs(),
		})
	}
	return c.JSON(fiber.Map{"moods": moods})
}
