package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"movie-recommender/internal/models"
)

// UserService handles users, preferences, and rating submission.
type UserService struct {
	users   UserStore
	ratings RatingStore
	movies  *MovieService
	redis   *redis.Client
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, ratings RatingStore, movies *MovieService, rdb *redis.Client) *UserService {
	return &UserService{users: users, ratings: ratings, movies: movies, redis: rdb}
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(req models.CreateUserRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	return s.users.CreateUser(req)
}

// GetUser returns a user by id.
func (s *UserService) GetUser(id int) (*models.User, error) {
	user, err := s.users.GetUser(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetPreference overwrites the user's preference record.
func (s *UserService) SetPreference(userID int, req models.SetPreferenceRequest) (*models.Preference, error) {
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}
	if req.Language == "" {
		req.Language = models.DefaultLanguage
	}
	if req.Region == "" {
		req.Region = models.DefaultRegion
	}

	pref, err := s.users.UpsertPreference(userID, req)
	if err != nil {
		return nil, err
	}
	s.invalidateUser(context.Background(), userID)
	return pref, nil
}

// GetPreference returns the user's preference record, or the system
// defaults when none is stored. A missing record is not a failure.
func (s *UserService) GetPreference(userID int) (*models.Preference, error) {
	pref, err := s.users.GetPreference(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			def := models.DefaultPreference(userID)
			return &def, nil
		}
		return nil, err
	}
	return pref, nil
}

// RateMovie validates and upserts a rating. Re-rating the same movie
// replaces the prior value; the movie is fetched from the catalog and
// saved first when the store has no record of it.
func (s *UserService) RateMovie(ctx context.Context, userID int, req models.CreateRatingRequest) (*models.Rating, error) {
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}

	movie, err := s.movies.EnsureMovie(ctx, req.TMDBId)
	if err != nil {
		return nil, err
	}

	rating, err := models.NewRating(userID, movie.ID, req.Value)
	if err != nil {
		return nil, err
	}
	if err := s.ratings.Upsert(rating); err != nil {
		return nil, err
	}

	s.invalidateUser(ctx, userID)
	return &rating, nil
}

// ListRatings returns all of a user's ratings.
func (s *UserService) ListRatings(userID int) ([]models.Rating, error) {
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	return ratings, nil
}

// invalidateUser drops cached recommendations after a rating or
// preference change.
func (s *UserService) invalidateUser(ctx context.Context, userID int) {
	if s.redis == nil {
		return
	}
	pattern := fmt.Sprintf("recommendations:%d:*", userID)
	iter := s.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		s.redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed to invalidate user cache", "user_id", userID, "error", err)
	}
}
