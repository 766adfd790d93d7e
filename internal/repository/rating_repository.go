package repository

import (
	"database/sql"
	"fmt"

	"movie-recommender/internal/models"
	"movie-recommender/internal/recommender"
)

// RatingRepository handles database operations for ratings.
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert stores a rating, replacing any prior rating for the same
// (user, movie) pair.
func (r *RatingRepository) Upsert(rating models.Rating) error {
	_, err := r.db.Exec(`
		INSERT INTO ratings (user_id, movie_id, value, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET value = EXCLUDED.value, created_at = NOW()
	`, rating.UserID, rating.MovieID, rating.Value)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// ListByUser returns all of a user's ratings.
func (r *RatingRepository) ListByUser(userID int) ([]models.Rating, error) {
	rows, err := r.db.Query(`
		SELECT user_id, movie_id, value, created_at
		FROM ratings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.UserID, &rt.MovieID, &rt.Value, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// ListRated returns the user's rated movies joined with genre data, the
// shape the engine consumes.
func (r *RatingRepository) ListRated(userID int) ([]recommender.RatedMovie, error) {
	rows, err := r.db.Query(`
		SELECT `+movieColumns+`, rt.value
		FROM ratings rt
		INNER JOIN movies m ON m.id = rt.movie_id
		WHERE rt.user_id = $1
		ORDER BY m.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rated movies: %w", err)
	}
	defer rows.Close()

	var rated []recommender.RatedMovie
	for rows.Next() {
		var m models.Movie
		var value float64
		if err := rows.Scan(&m.ID, &m.TMDBId, &m.Title, &m.OriginalTitle, &m.Overview,
			&m.ReleaseDate, &m.Popularity, &m.VoteAverage, &m.PosterPath,
			&m.OriginalLanguage, &m.Region, &m.CreatedAt, &m.UpdatedAt, &value); err != nil {
			return nil, fmt.Errorf("scan rated movie: %w", err)
		}
		rated = append(rated, recommender.RatedMovie{Movie: m, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Movie, len(rated))
	for i := range rated {
		refs[i] = &rated[i].Movie
	}
	movieRepo := MovieRepository{db: r.db}
	if err := movieRepo.loadGenres(refs); err != nil {
		return nil, err
	}
	return rated, nil
}
