package models

import "time"

// RecommendationSnapshot stores a computed recommendation score so the
// last generated list can be inspected without recomputing.
type RecommendationSnapshot struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	MovieID     int       `json:"movie_id"`
	Score       float64   `json:"score"`
	GeneratedAt time.Time `json:"generated_at"`
}

// MovieRecommendation is the response shape for a recommended movie.
type MovieRecommendation struct {
	ID          int     `json:"id"`
	TMDBId      int     `json:"tmdb_id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Genres      []int   `json:"genre_ids"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	PosterURL   string  `json:"poster_url"`
	Score       float64 `json:"score"`
}

// RecommendationResponse wraps the recommendation list. Fallback is set
// when a mood request found no matching candidates and the full pool
// was used instead.
type RecommendationResponse struct {
	UserID          int                   `json:"user_id"`
	Mood            string                `json:"mood,omitempty"`
	Fallback        bool                  `json:"fallback"`
	Recommendations []MovieRecommendation `json:"recommendations"`
	GeneratedAt     string                `json:"generated_at"`
}

// GenreWeight is one entry of a user's derived favorite genres.
type GenreWeight struct {
	GenreID int     `json:"genre_id"`
	Weight  float64 `json:"weight"`
}
