package models

import "time"

// Movie represents a movie stored in our database. The TMDB id is the
// stable external identifier; the internal id is only meaningful to us.
type Movie struct {
	ID               int       `json:"id"`
	TMDBId           int       `json:"tmdb_id"`
	Title            string    `json:"title"`
	OriginalTitle    string    `json:"original_title"`
	Overview         string    `json:"overview"`
	ReleaseDate      string    `json:"release_date"`
	Popularity       float64   `json:"popularity"`
	VoteAverage      float64   `json:"vote_average"`
	PosterPath       string    `json:"poster_path"`
	OriginalLanguage string    `json:"original_language"`
	Region           string    `json:"region"`
	// GenreIDs nil means "unknown", an empty slice means "known to have none".
	GenreIDs  []int     `json:"genre_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReleaseYear extracts the year from the release date, 0 if unset.
func (m *Movie) ReleaseYear() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	t, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// HasGenre reports whether the movie carries the given genre id.
func (m *Movie) HasGenre(genreID int) bool {
	for _, g := range m.GenreIDs {
		if g == genreID {
			return true
		}
	}
	return false
}

// SharesGenre reports whether the movie shares at least one genre with
// the given set.
func (m *Movie) SharesGenre(genreIDs []int) bool {
	for _, g := range genreIDs {
		if m.HasGenre(g) {
			return true
		}
	}
	return false
}

// Genre represents a movie genre.
type Genre struct {
	ID     int    `json:"id"`
	TMDBId int    `json:"tmdb_id"`
	Name   string `json:"name"`
}

// MovieListItem is the response shape for movie listing.
type MovieListItem struct {
	ID          int     `json:"id"`
	TMDBId      int     `json:"tmdb_id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	PosterURL   string  `json:"poster_url"`
}

const (
	TMDBImageBaseW500 = "https://image.tmdb.org/t/p/w500"
	TMDBImageBaseW185 = "https://image.tmdb.org/t/p/w185"
)
