package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movie-recommender/internal/config"
	"movie-recommender/internal/models"
)

// Client is the TMDB API client. It receives its key through the
// config struct at construction; there is no package-level state.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	region   string
	http     *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(cfg config.TMDBConfig) *Client {
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		region:   cfg.Region,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- TMDB Response Types (internal, not exposed to consumers) ----

type listResponse struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type tmdbMovie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	PosterPath       string  `json:"poster_path"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
}

type tmdbMovieDetail struct {
	ID               int         `json:"id"`
	Title            string      `json:"title"`
	OriginalTitle    string      `json:"original_title"`
	Overview         string      `json:"overview"`
	ReleaseDate      string      `json:"release_date"`
	Popularity       float64     `json:"popularity"`
	VoteAverage      float64     `json:"vote_average"`
	PosterPath       string      `json:"poster_path"`
	Genres           []tmdbGenre `json:"genres"`
	OriginalLanguage string      `json:"original_language"`
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []tmdbGenre `json:"genres"`
}

func (m tmdbMovie) toMovie(region string) models.Movie {
	return models.Movie{
		TMDBId:           m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		Overview:         m.Overview,
		ReleaseDate:      m.ReleaseDate,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		PosterPath:       m.PosterPath,
		OriginalLanguage: m.OriginalLanguage,
		Region:           region,
		GenreIDs:         m.GenreIDs,
	}
}

// ---- Client Methods ----

// SearchMovies searches the catalog by title.
func (c *Client) SearchMovies(ctx context.Context, query, language, region string) ([]models.Movie, error) {
	params := c.params(language, region)
	params.Set("query", query)
	params.Set("include_adult", "false")

	var result listResponse
	if err := c.get(ctx, "/search/movie", params, &result); err != nil {
		return nil, err
	}
	return c.toMovies(result.Results, region), nil
}

// DiscoverMovies fetches movies by genre from the discover endpoint,
// sorted by descending popularity as the catalog defines it.
func (c *Client) DiscoverMovies(ctx context.Context, genreIDs []int, language, region string) ([]models.Movie, error) {
	params := c.params(language, region)
	params.Set("sort_by", "popularity.desc")
	if len(genreIDs) > 0 {
		ids := make([]string, len(genreIDs))
		for i, id := range genreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}

	var result listResponse
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}
	return c.toMovies(result.Results, region), nil
}

// DiscoverPage fetches one page of the unfiltered discover listing.
func (c *Client) DiscoverPage(ctx context.Context, page int) ([]models.Movie, int, error) {
	params := c.params(c.language, c.region)
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(page))

	var result listResponse
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, 0, err
	}
	return c.toMovies(result.Results, c.region), result.TotalPages, nil
}

// GetMovieDetails fetches full details for one movie.
func (c *Client) GetMovieDetails(ctx context.Context, tmdbID int) (*models.Movie, error) {
	params := c.params(c.language, "")

	var result tmdbMovieDetail
	path := fmt.Sprintf("/movie/%d", tmdbID)
	if err := c.get(ctx, path, params, &result); err != nil {
		return nil, err
	}

	genreIDs := make([]int, 0, len(result.Genres))
	for _, g := range result.Genres {
		genreIDs = append(genreIDs, g.ID)
	}
	return &models.Movie{
		TMDBId:           result.ID,
		Title:            result.Title,
		OriginalTitle:    result.OriginalTitle,
		Overview:         result.Overview,
		ReleaseDate:      result.ReleaseDate,
		Popularity:       result.Popularity,
		VoteAverage:      result.VoteAverage,
		PosterPath:       result.PosterPath,
		OriginalLanguage: result.OriginalLanguage,
		GenreIDs:         genreIDs,
	}, nil
}

// GetTrending fetches this week's trending movies. Used as the
// candidate pool for users with no rating history.
func (c *Client) GetTrending(ctx context.Context) ([]models.Movie, error) {
	var result listResponse
	if err := c.get(ctx, "/trending/movie/week", c.params(c.language, ""), &result); err != nil {
		return nil, err
	}
	return c.toMovies(result.Results, c.region), nil
}

// GetGenres fetches the movie genre vocabulary.
func (c *Client) GetGenres(ctx context.Context) ([]models.Genre, error) {
	var result genreListResponse
	if err := c.get(ctx, "/genre/movie/list", c.params(c.language, ""), &result); err != nil {
		return nil, err
	}

	genres := make([]models.Genre, 0, len(result.Genres))
	for _, g := range result.Genres {
		genres = append(genres, models.Genre{TMDBId: g.ID, Name: g.Name})
	}
	return genres, nil
}

func (c *Client) params(language, region string) url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if language == "" {
		language = c.language
	}
	params.Set("language", language)
	if region != "" {
		params.Set("region", region)
	}
	return params
}

func (c *Client) toMovies(results []tmdbMovie, region string) []models.Movie {
	movies := make([]models.Movie, 0, len(results))
	for _, m := range results {
		movies = append(movies, m.toMovie(region))
	}
	return movies
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	slog.Debug("fetching TMDB", "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}
