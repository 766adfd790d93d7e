package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-recommender/internal/models"
	"movie-recommender/internal/recommender"
)

const (
	recommendationCacheTTL = 10 * time.Minute
	candidatePoolSize      = 100
)

// RecommendationService assembles candidate pools and serves the
// engine's rankings. Collaborator failures are propagated, never
// masked with partial results.
type RecommendationService struct {
	engine    *recommender.Engine
	ratings   RatingStore
	movies    MovieStore
	users     UserStore
	snapshots SnapshotStore
	catalog   Catalog
	redis     *redis.Client
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(
	engine *recommender.Engine,
	ratings RatingStore,
	movies MovieStore,
	users UserStore,
	snapshots SnapshotStore,
	catalog Catalog,
	rdb *redis.Client,
) *RecommendationService {
	return &RecommendationService{
		engine:    engine,
		ratings:   ratings,
		movies:    movies,
		users:     users,
		snapshots: snapshots,
		catalog:   catalog,
		redis:     rdb,
	}
}

// Recommend generates a ranked recommendation list for a user. A
// non-empty mood restricts the pool to the mood's genres, falling back
// to the full pool when nothing matches.
func (s *RecommendationService) Recommend(ctx context.Context, userID, limit int, moodStr string) (*models.RecommendationResponse, error) {
	var mood models.Mood
	if moodStr != "" {
		m, err := models.ParseMood(moodStr)
		if err != nil {
			return nil, err
		}
		mood = m
	}

	cacheKey := fmt.Sprintf("recommendations:%d:%d:%s", userID, limit, mood)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var resp models.RecommendationResponse
		if json.Unmarshal([]byte(cached), &resp) == nil {
			slog.Debug("recommendations cache hit", "user_id", userID)
			return &resp, nil
		}
	}

	if _, err := s.users.GetUser(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	rated, err := s.ratings.ListRated(userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	pool, err := s.assemblePool(ctx, userID, rated)
	if err != nil {
		return nil, err
	}

	var result recommender.Result
	if mood != "" {
		result, err = s.engine.RecommendByMood(rated, mood, pool, limit)
		if err != nil {
			return nil, err
		}
	} else {
		result = recommender.Result{Movies: s.engine.Recommend(rated, pool, limit)}
	}

	resp := s.buildResponse(userID, mood, result)

	// Persist snapshots asynchronously
	go s.persistSnapshots(userID, result.Movies)

	if data, err := json.Marshal(resp); err == nil {
		s.setCache(ctx, cacheKey, string(data), recommendationCacheTTL)
	}
	return resp, nil
}

// FavoriteGenres returns the user's derived favorite genres.
func (s *RecommendationService) FavoriteGenres(userID int) ([]models.GenreWeight, error) {
	if _, err := s.users.GetUser(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	rated, err := s.ratings.ListRated(userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	genres := s.engine.FavoriteGenres(rated)
	if genres == nil {
		genres = []models.GenreWeight{}
	}
	return genres, nil
}

// Snapshots returns the user's last persisted recommendation scores.
func (s *RecommendationService) Snapshots(userID, limit int) ([]models.RecommendationSnapshot, error) {
	return s.snapshots.List(userID, limit)
}

// assemblePool gathers the candidate movies for one request. Users
// with rating history draw from stored movies in their preferred
// language, topped up from the catalog's discover endpoint using their
// favorite genres when the store runs thin. Users with no ratings get
// the catalog's trending list, persisted so the pool has stable ids.
func (s *RecommendationService) assemblePool(ctx context.Context, userID int, rated []recommender.RatedMovie) ([]models.Movie, error) {
	pref, err := s.users.GetPreference(userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load preferences: %w", err)
		}
		def := models.DefaultPreference(userID)
		pref = &def
	}

	if len(rated) == 0 {
		trending, err := s.catalog.GetTrending(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch trending: %w", err)
		}
		return s.saveAll(trending)
	}

	pool, err := s.movies.ListCandidates(userID, langCode(pref.Language), candidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	if len(pool) < candidatePoolSize/2 {
		favorites := s.engine.FavoriteGenres(rated)
		genreIDs := make([]int, 0, len(favorites))
		for _, g := range favorites {
			genreIDs = append(genreIDs, g.GenreID)
		}

		// Stored movies in the favorite genres first, regardless of
		// language, then the catalog if the pool is still thin.
		if len(genreIDs) > 0 {
			stored, err := s.movies.ListByGenreIDs(genreIDs, candidatePoolSize)
			if err != nil {
				return nil, fmt.Errorf("load genre candidates: %w", err)
			}
			pool = mergePool(pool, stored, rated)
		}

		if len(pool) < candidatePoolSize/2 {
			discovered, err := s.catalog.DiscoverMovies(ctx, genreIDs, pref.Language, pref.Region)
			if err != nil {
				return nil, fmt.Errorf("discover candidates: %w", err)
			}
			saved, err := s.saveAll(discovered)
			if err != nil {
				return nil, err
			}
			pool = mergePool(pool, saved, rated)
		}
	}
	return pool, nil
}

// saveAll upserts catalog movies so pool members carry stable store ids.
func (s *RecommendationService) saveAll(movies []models.Movie) ([]models.Movie, error) {
	out := make([]models.Movie, 0, len(movies))
	for i := range movies {
		id, err := s.movies.SaveMovie(&movies[i])
		if err != nil {
			return nil, fmt.Errorf("save candidate: %w", err)
		}
		movies[i].ID = id
		out = append(out, movies[i])
	}
	return out, nil
}

// mergePool appends extra candidates, skipping duplicates and movies
// the user already rated.
func mergePool(pool, extra []models.Movie, rated []recommender.RatedMovie) []models.Movie {
	seen := make(map[int]bool, len(pool)+len(rated))
	for _, m := range pool {
		seen[m.ID] = true
	}
	for _, r := range rated {
		seen[r.Movie.ID] = true
	}
	for _, m := range extra {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		pool = append(pool, m)
	}
	return pool
}

func (s *RecommendationService) buildResponse(userID int, mood models.Mood, result recommender.Result) *models.RecommendationResponse {
	recs := make([]models.MovieRecommendation, 0, len(result.Movies))
	for _, sm := range result.Movies {
		rec := models.MovieRecommendation{
			ID:          sm.Movie.ID,
			TMDBId:      sm.Movie.TMDBId,
			Title:       sm.Movie.Title,
			ReleaseDate: sm.Movie.ReleaseDate,
			Genres:      sm.Movie.GenreIDs,
			Popularity:  sm.Movie.Popularity,
			VoteAverage: sm.Movie.VoteAverage,
			Score:       sm.Score,
		}
		if sm.Movie.PosterPath != "" {
			rec.PosterURL = models.TMDBImageBaseW500 + sm.Movie.PosterPath
		}
		recs = append(recs, rec)
	}
	return &models.RecommendationResponse{
		UserID:          userID,
		Mood:            string(mood),
		Fallback:        result.Fallback,
		Recommendations: recs,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *RecommendationService) persistSnapshots(userID int, movies []recommender.ScoredMovie) {
	if err := s.snapshots.Clear(userID); err != nil {
		slog.Error("failed to clear snapshots", "user_id", userID, "error", err)
		return
	}
	for _, sm := range movies {
		if err := s.snapshots.Upsert(userID, sm.Movie.ID, sm.Score); err != nil {
			slog.Error("failed to upsert snapshot", "user_id", userID, "movie_id", sm.Movie.ID, "error", err)
		}
	}
}

// langCode reduces a catalog locale like "en-US" to the bare language
// code movies carry.
func langCode(language string) string {
	if i := strings.IndexByte(language, '-'); i > 0 {
		return language[:i]
	}
	return language
}

// ---- Redis Helpers ----

func (s *RecommendationService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *RecommendationService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}
