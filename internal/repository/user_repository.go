package repository

import (
	"database/sql"
	"fmt"

	"movie-recommender/internal/models"
)

// UserRepository handles database operations for users and preferences.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user.
func (r *UserRepository) CreateUser(req models.CreateUserRequest) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		INSERT INTO users (username, email) VALUES ($1, $2)
		RETURNING id, username, email, created_at
	`, req.Username, req.Email).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// GetUser returns a user by ID.
func (r *UserRepository) GetUser(id int) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT id, username, email, created_at FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertPreference creates or overwrites a user's preference record.
func (r *UserRepository) UpsertPreference(userID int, req models.SetPreferenceRequest) (*models.Preference, error) {
	var pref models.Preference
	err := r.db.QueryRow(`
		INSERT INTO preferences (user_id, language, region, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			region = EXCLUDED.region,
			updated_at = NOW()
		RETURNING user_id, language, region, updated_at
	`, userID, req.Language, req.Region).Scan(
		&pref.UserID, &pref.Language, &pref.Region, &pref.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert preference: %w", err)
	}
	return &pref, nil
}

// GetPreference returns a user's preference record, sql.ErrNoRows if absent.
func (r *UserRepository) GetPreference(userID int) (*models.Preference, error) {
	var pref models.Preference
	err := r.db.QueryRow(`
		SELECT user_id, language, region, updated_at
		FROM preferences WHERE user_id = $1
	`, userID).Scan(&pref.UserID, &pref.Language, &pref.Region, &pref.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &pref, nil
}
