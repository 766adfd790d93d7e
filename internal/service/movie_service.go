package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-recommender/internal/models"
)

const (
	searchCacheTTL      = 5 * time.Minute
	movieDetailCacheTTL = 30 * time.Minute
)

// MovieService handles catalog search, movie lookup, and the TMDB sync
// that keeps the local candidate pool warm.
type MovieService struct {
	movies  MovieStore
	catalog Catalog
	redis   *redis.Client
}

// NewMovieService creates a new MovieService.
func NewMovieService(movies MovieStore, catalog Catalog, rdb *redis.Client) *MovieService {
	return &MovieService{movies: movies, catalog: catalog, redis: rdb}
}

// Sync fetches the genre vocabulary and the given number of discover
// pages from the catalog and upserts everything into the store.
func (s *MovieService) Sync(ctx context.Context, pages int) (int, error) {
	slog.Info("starting catalog sync", "pages", pages)

	genres, err := s.catalog.GetGenres(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch genres: %w", err)
	}
	for _, g := range genres {
		if _, err := s.movies.UpsertGenre(g.TMDBId, g.Name); err != nil {
			slog.Error("failed to upsert genre", "genre", g.Name, "error", err)
		}
	}
	slog.Info("synced genres", "count", len(genres))

	totalSynced := 0
	for page := 1; page <= pages; page++ {
		results, totalPages, err := s.catalog.DiscoverPage(ctx, page)
		if err != nil {
			return totalSynced, fmt.Errorf("fetch discover page %d: %w", page, err)
		}
		for i := range results {
			if _, err := s.movies.SaveMovie(&results[i]); err != nil {
				slog.Error("failed to save movie", "title", results[i].Title, "error", err)
				continue
			}
			totalSynced++
		}
		slog.Info("synced page", "page", page, "movies", len(results))
		if page >= totalPages {
			break
		}
	}

	s.invalidateCache(ctx)
	slog.Info("catalog sync completed", "total_synced", totalSynced)
	return totalSynced, nil
}

// Search queries the catalog by title, caching results briefly.
func (s *MovieService) Search(ctx context.Context, query, language, region string) ([]models.MovieListItem, error) {
	cacheKey := fmt.Sprintf("movies:search:%s:%s:%s", query, language, region)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var items []models.MovieListItem
		if json.Unmarshal([]byte(cached), &items) == nil {
			slog.Debug("cache hit", "key", cacheKey)
			return items, nil
		}
	}

	results, err := s.catalog.SearchMovies(ctx, query, language, region)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	items := make([]models.MovieListItem, 0, len(results))
	for _, m := range results {
		item := models.MovieListItem{
			ID:          m.ID,
			TMDBId:      m.TMDBId,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			Popularity:  m.Popularity,
			VoteAverage: m.VoteAverage,
		}
		if m.PosterPath != "" {
			item.PosterURL = models.TMDBImageBaseW500 + m.PosterPath
		}
		items = append(items, item)
	}

	if data, err := json.Marshal(items); err == nil {
		s.setCache(ctx, cacheKey, string(data), searchCacheTTL)
	}
	return items, nil
}

// GetMovie returns a stored movie by internal id, filling from the
// catalog when the store has no record yet.
func (s *MovieService) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	cacheKey := fmt.Sprintf("movie:detail:%d", id)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var m models.Movie
		if json.Unmarshal([]byte(cached), &m) == nil {
			slog.Debug("cache hit", "key", cacheKey)
			return &m, nil
		}
	}

	m, err := s.movies.GetMovieByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}

	if data, err := json.Marshal(m); err == nil {
		s.setCache(ctx, cacheKey, string(data), movieDetailCacheTTL)
	}
	return m, nil
}

// EnsureMovie returns the stored movie for a catalog id, fetching and
// saving it first if the store has no record. Ratings reference stored
// movies only, so this is the path that upholds the "saved before
// rated" invariant.
func (s *MovieService) EnsureMovie(ctx context.Context, tmdbID int) (*models.Movie, error) {
	m, err := s.movies.GetMovieByTMDBId(tmdbID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get movie by catalog id: %w", err)
	}

	fetched, err := s.catalog.GetMovieDetails(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("fetch movie %d from catalog: %w", tmdbID, err)
	}
	id, err := s.movies.SaveMovie(fetched)
	if err != nil {
		return nil, fmt.Errorf("save movie: %w", err)
	}
	fetched.ID = id
	return fetched, nil
}

// Genres returns the stored genre vocabulary, cached.
func (s *MovieService) Genres(ctx context.Context) ([]models.Genre, error) {
	cacheKey := "movies:genres"
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var genres []models.Genre
		if json.Unmarshal([]byte(cached), &genres) == nil {
			return genres, nil
		}
	}

	genres, err := s.movies.ListGenres()
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if genres == nil {
		genres = []models.Genre{}
	}

	if data, err := json.Marshal(genres); err == nil {
		s.setCache(ctx, cacheKey, string(data), movieDetailCacheTTL)
	}
	return genres, nil
}

// ---- Redis Helpers ----

func (s *MovieService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *MovieService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

func (s *MovieService) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	for _, pattern := range []string{"movies:*", "movie:*", "recommendations:*"} {
		iter := s.redis.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			s.redis.Del(ctx, iter.Val())
		}
	}
	slog.Info("cache invalidated after sync")
}
