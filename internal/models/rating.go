package models

import (
	"errors"
	"fmt"
	"time"
)

// Rating scale bounds. A user rates a movie on a 1-10 ordinal scale.
const (
	RatingMin = 1.0
	RatingMax = 10.0
)

// ErrInvalidRating is returned when a rating value falls outside the scale.
var ErrInvalidRating = errors.New("rating value outside valid range")

// Rating is one user's rating of one movie. At most one rating exists
// per (user, movie) pair; a later rating replaces the earlier one.
type Rating struct {
	UserID    int       `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRating validates and constructs a Rating.
func NewRating(userID, movieID int, value float64) (Rating, error) {
	if userID <= 0 {
		return Rating{}, fmt.Errorf("invalid user id %d", userID)
	}
	if movieID <= 0 {
		return Rating{}, fmt.Errorf("invalid movie id %d", movieID)
	}
	if value < RatingMin || value > RatingMax {
		return Rating{}, fmt.Errorf("%w: %.1f not in [%.0f, %.0f]",
			ErrInvalidRating, value, RatingMin, RatingMax)
	}
	return Rating{UserID: userID, MovieID: movieID, Value: value}, nil
}

// CreateRatingRequest is the request body for rating a movie. Clients
// identify the movie by its catalog id, the id search results carry.
type CreateRatingRequest struct {
	TMDBId int     `json:"tmdb_id"`
	Value  float64 `json:"value"`
}
