package service

import (
	"context"
	"errors"

	"movie-recommender/internal/models"
	"movie-recommender/internal/recommender"
)

// Sentinel errors surfaced to handlers.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMovieNotFound = errors.New("movie not found")
)

// The services consume the store and catalog through narrow interfaces
// so tests can substitute in-memory fakes. The Postgres repositories
// and the TMDB client are the production implementations.

// MovieStore persists movies and genres.
type MovieStore interface {
	SaveMovie(m *models.Movie) (int, error)
	GetMovieByID(id int) (*models.Movie, error)
	GetMovieByTMDBId(tmdbID int) (*models.Movie, error)
	ListCandidates(userID int, language string, limit int) ([]models.Movie, error)
	ListByGenreIDs(genreIDs []int, limit int) ([]models.Movie, error)
	UpsertGenre(tmdbID int, name string) (int, error)
	ListGenres() ([]models.Genre, error)
}

// RatingStore persists per-user ratings.
type RatingStore interface {
	Upsert(rating models.Rating) error
	ListByUser(userID int) ([]models.Rating, error)
	ListRated(userID int) ([]recommender.RatedMovie, error)
}

// UserStore persists users and preferences.
type UserStore interface {
	CreateUser(req models.CreateUserRequest) (*models.User, error)
	GetUser(id int) (*models.User, error)
	UpsertPreference(userID int, req models.SetPreferenceRequest) (*models.Preference, error)
	GetPreference(userID int) (*models.Preference, error)
}

// SnapshotStore persists computed recommendation lists.
type SnapshotStore interface {
	Upsert(userID, movieID int, score float64) error
	List(userID, limit int) ([]models.RecommendationSnapshot, error)
	Clear(userID int) error
}

// Catalog is the external movie catalog.
type Catalog interface {
	SearchMovies(ctx context.Context, query, language, region string) ([]models.Movie, error)
	DiscoverMovies(ctx context.Context, genreIDs []int, language, region string) ([]models.Movie, error)
	DiscoverPage(ctx context.Context, page int) ([]models.Movie, int, error)
	GetMovieDetails(ctx context.Context, tmdbID int) (*models.Movie, error)
	GetTrending(ctx context.Context) ([]models.Movie, error)
	GetGenres(ctx context.Context) ([]models.Genre, error)
}
