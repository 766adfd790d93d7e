package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"movie-recommender/internal/service"
)

// MovieHandler handles HTTP requests for movies.
type MovieHandler struct {
	svc *service.MovieService
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(svc *service.MovieService) *MovieHandler {
	return &MovieHandler{svc: svc}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
func (h *MovieHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-recommender",
	})
}

// SearchMovies searches the external catalog by title.
// GET /api/v1/movies/search?query=&language=&region=
func (h *MovieHandler) SearchMovies(c fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	items, err := h.svc.Search(c.Context(), query, c.Query("language"), c.Query("region"))
	if err != nil {
		slog.Error("search failed", "query", query, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "catalog search failed",
		})
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"results": items,
	})
}

// GetMovie returns a stored movie by internal id.
// GET /api/v1/movies/:id
func (h *MovieHandler) GetMovie(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid movie ID",
		})
	}

	movie, err := h.svc.GetMovie(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "movie not found",
			})
		}
		slog.Error("failed to get movie", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve movie",
		})
	}

	return c.JSON(movie)
}

// ListGenres returns the stored genre vocabulary.
// GET /api/v1/genres
func (h *MovieHandler) ListGenres(c fiber.Ctx) error {
	genres, err := h.svc.Genres(c.Context())
	if err != nil {
		slog.Error("failed to list genres", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to list genres",
		})
	}
	return c.JSON(fiber.Map{"genres": genres})
}

// SyncMovies triggers a catalog-to-store sync.
// POST /api/v1/admin/sync?pages=
func (h *MovieHandler) SyncMovies(c fiber.Ctx) error {
	pages := fiber.Query(c, "pages", 5)
	if pages < 1 {
		pages = 1
	}
	if pages > 50 {
		pages = 50
	}

	count, err := h.svc.Sync(c.Context(), pages)
	if err != nil {
		slog.Error("sync failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "sync failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":       "sync completed",
		"movies_synced": count,
		"pages":         pages,
	})
}
