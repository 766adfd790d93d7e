package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"movie-recommender/internal/models"
	"movie-recommender/internal/recommender"
)

// memStore is an in-memory implementation of the store interfaces,
// mirroring the upsert semantics of the Postgres repositories.
type memStore struct {
	mu          sync.Mutex
	nextMovieID int
	nextUserID  int
	movies      map[int]models.Movie
	byTMDB      map[int]int
	genres      map[int]string
	users       map[int]models.User
	prefs       map[int]models.Preference
	ratings     map[[2]int]models.Rating
	snapshots   map[[2]int]models.RecommendationSnapshot
}

func newMemStore() *memStore {
	return &memStore{
		movies:    make(map[int]models.Movie),
		byTMDB:    make(map[int]int),
		genres:    make(map[int]string),
		users:     make(map[int]models.User),
		prefs:     make(map[int]models.Preference),
		ratings:   make(map[[2]int]models.Rating),
		snapshots: make(map[[2]int]models.RecommendationSnapshot),
	}
}

// ---- MovieStore ----

func (s *memStore) SaveMovie(m *models.Movie) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byTMDB[m.TMDBId]
	if !ok {
		s.nextMovieID++
		id = s.nextMovieID
		s.byTMDB[m.TMDBId] = id
	}
	stored := *m
	stored.ID = id
	s.movies[id] = stored
	return id, nil
}

func (s *memStore) GetMovieByID(id int) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (s *memStore) GetMovieByTMDBId(tmdbID int) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byTMDB[tmdbID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	m := s.movies[id]
	return &m, nil
}

func (s *memStore) ListCandidates(userID int, language string, limit int) ([]models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Movie
	for id, m := range s.movies {
		if language != "" && m.OriginalLanguage != language {
			continue
		}
		if _, rated := s.ratings[[2]int{userID, id}]; rated {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListByGenreIDs(genreIDs []int, limit int) ([]models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Movie
	for _, m := range s.movies {
		if m.SharesGenre(genreIDs) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) UpsertGenre(tmdbID int, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres[tmdbID] = name
	return tmdbID, nil
}

func (s *memStore) ListGenres() ([]models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Genre
	for id, name := range s.genres {
		out = append(out, models.Genre{TMDBId: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- RatingStore ----

func (s *memStore) Upsert(rating models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[rating.UserID]; !ok {
		return fmt.Errorf("foreign key: user %d does not exist", rating.UserID)
	}
	if _, ok := s.movies[rating.MovieID]; !ok {
		return fmt.Errorf("foreign key: movie %d does not exist", rating.MovieID)
	}
	rating.CreatedAt = time.Now()
	s.ratings[[2]int{rating.UserID, rating.MovieID}] = rating
	return nil
}

func (s *memStore) ListByUser(userID int) ([]models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Rating
	for key, r := range s.ratings {
		if key[0] == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

func (s *memStore) ListRated(userID int) ([]recommender.RatedMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recommender.RatedMovie
	for key, r := range s.ratings {
		if key[0] != userID {
			continue
		}
		m, ok := s.movies[r.MovieID]
		if !ok {
			continue
		}
		out = append(out, recommender.RatedMovie{Movie: m, Value: r.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Movie.ID < out[j].Movie.ID })
	return out, nil
}

// ---- UserStore ----

func (s *memStore) CreateUser(req models.CreateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u := models.User{ID: s.nextUserID, Username: req.Username, Email: req.Email, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return &u, nil
}

func (s *memStore) GetUser(id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s *memStore) UpsertPreference(userID int, req models.SetPreferenceRequest) (*models.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Preference{UserID: userID, Language: req.Language, Region: req.Region, UpdatedAt: time.Now()}
	s.prefs[userID] = p
	return &p, nil
}

func (s *memStore) GetPreference(userID int) (*models.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

// ---- SnapshotStore ----

func (s *memStore) UpsertSnapshot(userID, movieID int, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[[2]int{userID, movieID}] = models.RecommendationSnapshot{
		UserID: userID, MovieID: movieID, Score: score, GeneratedAt: time.Now(),
	}
	return nil
}

func (s *memStore) List(userID, limit int) ([]models.RecommendationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RecommendationSnapshot
	for key, snap := range s.snapshots {
		if key[0] == userID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Clear(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.snapshots {
		if key[0] == userID {
			delete(s.snapshots, key)
		}
	}
	return nil
}

// snapshotAdapter exposes memStore as a SnapshotStore without the
// Upsert name colliding with RatingStore.
type snapshotAdapter struct{ *memStore }

func (a snapshotAdapter) Upsert(userID, movieID int, score float64) error {
	return a.UpsertSnapshot(userID, movieID, score)
}

// ---- Catalog fake ----

type fakeCatalog struct {
	trending []models.Movie
	discover []models.Movie
	search   []models.Movie
	details  map[int]models.Movie
	err      error

	trendingCalls int
	discoverCalls int
}

func (c *fakeCatalog) SearchMovies(ctx context.Context, query, language, region string) ([]models.Movie, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]models.Movie(nil), c.search...), nil
}

func (c *fakeCatalog) DiscoverMovies(ctx context.Context, genreIDs []int, language, region string) ([]models.Movie, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.discoverCalls++
	return append([]models.Movie(nil), c.discover...), nil
}

func (c *fakeCatalog) DiscoverPage(ctx context.Context, page int) ([]models.Movie, int, error) {
	if c.err != nil {
		return nil, 0, c.err
	}
	return append([]models.Movie(nil), c.discover...), 1, nil
}

func (c *fakeCatalog) GetMovieDetails(ctx context.Context, tmdbID int) (*models.Movie, error) {
	if c.err != nil {
		return nil, c.err
	}
	m, ok := c.details[tmdbID]
	if !ok {
		return nil, fmt.Errorf("TMDB API returned status 404")
	}
	return &m, nil
}

func (c *fakeCatalog) GetTrending(ctx context.Context) ([]models.Movie, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.trendingCalls++
	return append([]models.Movie(nil), c.trending...), nil
}

func (c *fakeCatalog) GetGenres(ctx context.Context) ([]models.Genre, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []models.Genre{{TMDBId: 28, Name: "Action"}, {TMDBId: 35, Name: "Comedy"}}, nil
}
