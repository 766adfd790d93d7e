package service

import (
	"context"
	"errors"
	"testing"

	"movie-recommender/internal/models"
)

func newUserServiceFixture(catalog *fakeCatalog) (*UserService, *memStore) {
	store := newMemStore()
	movieSvc := NewMovieService(store, catalog, nil)
	userSvc := NewUserService(store, store, movieSvc, nil)
	return userSvc, store
}

func seedUser(t *testing.T, store *memStore) *models.User {
	t.Helper()
	u, err := store.CreateUser(models.CreateUserRequest{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedMovie(t *testing.T, store *memStore, tmdbID int) models.Movie {
	t.Helper()
	m := models.Movie{TMDBId: tmdbID, Title: "seeded", Popularity: 10, VoteAverage: 7, OriginalLanguage: "en", GenreIDs: []int{28}}
	id, err := store.SaveMovie(&m)
	if err != nil {
		t.Fatalf("seed movie: %v", err)
	}
	m.ID = id
	return m
}

func TestRateMovieIdempotent(t *testing.T) {
	svc, store := newUserServiceFixture(&fakeCatalog{})
	user := seedUser(t, store)
	seedMovie(t, store, 501)

	req := models.CreateRatingRequest{TMDBId: 501, Value: 7}
	for i := 0; i < 2; i++ {
		if _, err := svc.RateMovie(context.Background(), user.ID, req); err != nil {
			t.Fatalf("rate attempt %d: %v", i+1, err)
		}
	}

	ratings, err := svc.ListRatings(user.ID)
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("expected exactly 1 rating after double rate, got %d", len(ratings))
	}
	if ratings[0].Value != 7 {
		t.Errorf("expected value 7, got %v", ratings[0].Value)
	}
}

func TestRateMovieUpsertReplacesValue(t *testing.T) {
	svc, store := newUserServiceFixture(&fakeCatalog{})
	user := seedUser(t, store)
	seedMovie(t, store, 501)

	if _, err := svc.RateMovie(context.Background(), user.ID, models.CreateRatingRequest{TMDBId: 501, Value: 5}); err != nil {
		t.Fatalf("first rating: %v", err)
	}
	if _, err := svc.RateMovie(context.Background(), user.ID, models.CreateRatingRequest{TMDBId: 501, Value: 8}); err != nil {
		t.Fatalf("second rating: %v", err)
	}

	ratings, err := svc.ListRatings(user.ID)
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("expected exactly 1 stored rating, got %d", len(ratings))
	}
	if ratings[0].Value != 8 {
		t.Errorf("expected replaced value 8, got %v", ratings[0].Value)
	}
}

func TestRateMovieRejectsOutOfScale(t *testing.T) {
	svc, store := newUserServiceFixture(&fakeCatalog{})
	user := seedUser(t, store)
	seedMovie(t, store, 501)

	for _, value := range []float64{0, 0.5, 11, -2} {
		_, err := svc.RateMovie(context.Background(), user.ID, models.CreateRatingRequest{TMDBId: 501, Value: value})
		if !errors.Is(err, models.ErrInvalidRating) {
			t.Errorf("value %v: expected ErrInvalidRating, got %v", value, err)
		}
	}

	ratings, _ := svc.ListRatings(user.ID)
	if len(ratings) != 0 {
		t.Errorf("rejected ratings must not be persisted, found %d", len(ratings))
	}
}

func TestRateMovieFetchesUnknownMovieFromCatalog(t *testing.T) {
	catalog := &fakeCatalog{details: map[int]models.Movie{
		777: {TMDBId: 777, Title: "fetched", Popularity: 42, VoteAverage: 8, OriginalLanguage: "en", GenreIDs: []int{18}},
	}}
	svc, store := newUserServiceFixture(catalog)
	user := seedUser(t, store)

	rating, err := svc.RateMovie(context.Background(), user.ID, models.CreateRatingRequest{TMDBId: 777, Value: 9})
	if err != nil {
		t.Fatalf("rate unknown movie: %v", err)
	}

	// The movie must have been saved before the rating referenced it.
	saved, err := store.GetMovieByTMDBId(777)
	if err != nil {
		t.Fatalf("movie was not saved to the store: %v", err)
	}
	if rating.MovieID != saved.ID {
		t.Errorf("rating references movie %d, store has %d", rating.MovieID, saved.ID)
	}
}

func TestRateMovieUnknownUser(t *testing.T) {
	svc, _ := newUserServiceFixture(&fakeCatalog{})

	_, err := svc.RateMovie(context.Background(), 99, models.CreateRatingRequest{TMDBId: 501, Value: 5})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetPreferenceDefaultsWhenUnset(t *testing.T) {
	svc, store := newUserServiceFixture(&fakeCatalog{})
	user := seedUser(t, store)

	pref, err := svc.GetPreference(user.ID)
	if err != nil {
		t.Fatalf("missing preference must not be an error: %v", err)
	}
	if pref.Language != models.DefaultLanguage || pref.Region != models.DefaultRegion {
		t.Errorf("expected defaults %s/%s, got %s/%s",
			models.DefaultLanguage, models.DefaultRegion, pref.Language, pref.Region)
	}
}

func TestSetPreferenceOverwrites(t *testing.T) {
	svc, store := newUserServiceFixture(&fakeCatalog{})
	user := seedUser(t, store)

	if _, err := svc.SetPreference(user.ID, models.SetPreferenceRequest{Language: "fr-FR", Region: "FR"}); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	if _, err := svc.SetPreference(user.ID, models.SetPreferenceRequest{Language: "de-DE", Region: "DE"}); err != nil {
		t.Fatalf("overwrite preference: %v", err)
	}

	pref, err := svc.GetPreference(user.ID)
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if pref.Language != "de-DE" || pref.Region != "DE" {
		t.Errorf("expected overwritten preference de-DE/DE, got %s/%s", pref.Language, pref.Region)
	}
}
