package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"movie-recommender/internal/config"
)

// NewPostgres creates a new PostgreSQL connection and runs migrations.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS genres (
			id SERIAL PRIMARY KEY,
			tmdb_id INTEGER UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id SERIAL PRIMARY KEY,
			tmdb_id INTEGER UNIQUE NOT NULL,
			title VARCHAR(500) NOT NULL,
			original_title VARCHAR(500) DEFAULT '',
			overview TEXT DEFAULT '',
			release_date DATE,
			popularity DOUBLE PRECISION DEFAULT 0,
			vote_average DOUBLE PRECISION DEFAULT 0,
			poster_path VARCHAR(500) DEFAULT '',
			original_language VARCHAR(10) DEFAULT 'en',
			region VARCHAR(10) DEFAULT '',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id INTEGER REFERENCES movies(id) ON DELETE CASCADE,
			genre_tmdb_id INTEGER NOT NULL,
			PRIMARY KEY (movie_id, genre_tmdb_id)
		)`,
		// A movie must exist before it can be rated; one rating per
		// (user, movie) pair, replaced on re-rate.
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			movie_id INTEGER REFERENCES movies(id) ON DELETE CASCADE,
			value DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			language VARCHAR(10) NOT NULL DEFAULT 'en-US',
			region VARCHAR(10) NOT NULL DEFAULT 'US',
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_snapshots (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			movie_id INTEGER REFERENCES movies(id) ON DELETE CASCADE,
			score DOUBLE PRECISION NOT NULL,
			generated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, movie_id)
		)`,
		// Indexes for common query patterns
		`CREATE INDEX IF NOT EXISTS idx_movies_popularity ON movies(popularity)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_language ON movies(original_language)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_tmdb_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
