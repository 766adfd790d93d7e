package repository

import (
	"database/sql"
	"fmt"

	"movie-recommender/internal/models"
)

// SnapshotRepository persists computed recommendation scores so the
// last generated list survives restarts.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert stores or updates a recommendation score snapshot.
func (r *SnapshotRepository) Upsert(userID, movieID int, score float64) error {
	_, err := r.db.Exec(`
		INSERT INTO recommendation_snapshots (user_id, movie_id, score, generated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET score = EXCLUDED.score, generated_at = NOW()
	`, userID, movieID, score)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// List retrieves the top N snapshots for a user by score.
func (r *SnapshotRepository) List(userID, limit int) ([]models.RecommendationSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, movie_id, score, generated_at
		FROM recommendation_snapshots
		WHERE user_id = $1
		ORDER BY score DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.RecommendationSnapshot
	for rows.Next() {
		var s models.RecommendationSnapshot
		if err := rows.Scan(&s.ID, &s.UserID, &s.MovieID, &s.Score, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Clear removes all snapshots for a user before regeneration.
func (r *SnapshotRepository) Clear(userID int) error {
	_, err := r.db.Exec(`DELETE FROM recommendation_snapshots WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
