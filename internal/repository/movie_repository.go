package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"movie-recommender/internal/models"
)

// MovieRepository handles database operations for movies and genres.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// SaveMovie inserts or updates a movie and replaces its genre links.
// Returns the internal movie id.
func (r *MovieRepository) SaveMovie(m *models.Movie) (int, error) {
	var id int
	err := r.db.QueryRow(`
		INSERT INTO movies (tmdb_id, title, original_title, overview, release_date,
			popularity, vote_average, poster_path, original_language, region, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (tmdb_id) DO UPDATE SET
			title = EXCLUDED.title,
			original_title = EXCLUDED.original_title,
			overview = EXCLUDED.overview,
			release_date = EXCLUDED.release_date,
			popularity = EXCLUDED.popularity,
			vote_average = EXCLUDED.vote_average,
			poster_path = EXCLUDED.poster_path,
			original_language = EXCLUDED.original_language,
			region = EXCLUDED.region,
			updated_at = NOW()
		RETURNING id
	`, m.TMDBId, m.Title, m.OriginalTitle, m.Overview, nullableDate(m.ReleaseDate),
		m.Popularity, m.VoteAverage, m.PosterPath, m.OriginalLanguage, m.Region).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert movie: %w", err)
	}

	// nil genre ids means unknown: keep whatever links exist.
	if m.GenreIDs != nil {
		if err := r.replaceGenres(id, m.GenreIDs); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r *MovieRepository) replaceGenres(movieID int, genreIDs []int) error {
	if _, err := r.db.Exec(`DELETE FROM movie_genres WHERE movie_id = $1`, movieID); err != nil {
		return fmt.Errorf("clear movie genres: %w", err)
	}
	for _, g := range genreIDs {
		_, err := r.db.Exec(`
			INSERT INTO movie_genres (movie_id, genre_tmdb_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, movieID, g)
		if err != nil {
			return fmt.Errorf("link movie genre: %w", err)
		}
	}
	return nil
}

// UpsertGenre inserts or updates a genre name.
func (r *MovieRepository) UpsertGenre(tmdbID int, name string) (int, error) {
	var id int
	err := r.db.QueryRow(`
		INSERT INTO genres (tmdb_id, name)
		VALUES ($1, $2)
		ON CONFLICT (tmdb_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, tmdbID, name).Scan(&id)
	return id, err
}

// ListGenres returns the stored genre vocabulary.
func (r *MovieRepository) ListGenres() ([]models.Genre, error) {
	rows, err := r.db.Query(`SELECT id, tmdb_id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.TMDBId, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

const movieColumns = `m.id, m.tmdb_id, m.title, m.original_title, COALESCE(m.overview, ''),
	COALESCE(TO_CHAR(m.release_date, 'YYYY-MM-DD'), ''),
	m.popularity, m.vote_average, COALESCE(m.poster_path, ''),
	m.original_language, m.region, m.created_at, m.updated_at`

func scanMovie(rows interface{ Scan(...any) error }) (models.Movie, error) {
	var m models.Movie
	err := rows.Scan(&m.ID, &m.TMDBId, &m.Title, &m.OriginalTitle, &m.Overview,
		&m.ReleaseDate, &m.Popularity, &m.VoteAverage, &m.PosterPath,
		&m.OriginalLanguage, &m.Region, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// GetMovieByID returns a movie with its genre ids by internal id.
func (r *MovieRepository) GetMovieByID(id int) (*models.Movie, error) {
	row := r.db.QueryRow(`SELECT `+movieColumns+` FROM movies m WHERE m.id = $1`, id)
	m, err := scanMovie(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadGenres([]*models.Movie{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMovieByTMDBId returns a movie with its genre ids by TMDB id.
func (r *MovieRepository) GetMovieByTMDBId(tmdbID int) (*models.Movie, error) {
	row := r.db.QueryRow(`SELECT `+movieColumns+` FROM movies m WHERE m.tmdb_id = $1`, tmdbID)
	m, err := scanMovie(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadGenres([]*models.Movie{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListCandidates returns stored movies in the given language that the
// user has not rated, ordered by descending popularity. An empty
// language matches everything.
func (r *MovieRepository) ListCandidates(userID int, language string, limit int) ([]models.Movie, error) {
	rows, err := r.db.Query(`
		SELECT `+movieColumns+`
		FROM movies m
		WHERE ($2 = '' OR m.original_language = $2)
		  AND NOT EXISTS (
			SELECT 1 FROM ratings rt WHERE rt.user_id = $1 AND rt.movie_id = m.id
		  )
		ORDER BY m.popularity DESC, m.id ASC
		LIMIT $3
	`, userID, language, limit)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListByGenreIDs returns stored movies carrying at least one of the
// given genre ids, ordered by descending popularity.
func (r *MovieRepository) ListByGenreIDs(genreIDs []int, limit int) ([]models.Movie, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT `+movieColumns+`
		FROM movies m
		INNER JOIN movie_genres mg ON mg.movie_id = m.id
		WHERE mg.genre_tmdb_id = ANY($1)
		ORDER BY m.popularity DESC, m.id ASC
		LIMIT $2
	`, pq.Array(genreIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("query movies by genres: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *MovieRepository) collect(rows *sql.Rows) ([]models.Movie, error) {
	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			slog.Error("failed to scan movie row", "error", err)
			continue
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Movie, len(movies))
	for i := range movies {
		refs[i] = &movies[i]
	}
	if err := r.loadGenres(refs); err != nil {
		return nil, err
	}
	return movies, nil
}

// loadGenres fills GenreIDs for the given movies in one query.
func (r *MovieRepository) loadGenres(movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ids := make([]int, len(movies))
	byID := make(map[int]*models.Movie, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
		byID[m.ID] = m
		m.GenreIDs = []int{}
	}

	rows, err := r.db.Query(`
		SELECT movie_id, genre_tmdb_id
		FROM movie_genres
		WHERE movie_id = ANY($1)
		ORDER BY movie_id, genre_tmdb_id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query movie genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movieID, genreID int
		if err := rows.Scan(&movieID, &genreID); err != nil {
			return fmt.Errorf("scan movie genre: %w", err)
		}
		if m, ok := byID[movieID]; ok {
			m.GenreIDs = append(m.GenreIDs, genreID)
		}
	}
	return rows.Err()
}

func nullableDate(dateStr string) interface{} {
	if dateStr == "" {
		return nil
	}
	return dateStr
}
