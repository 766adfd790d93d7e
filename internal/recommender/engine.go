package recommender

import (
	"math"
	"sort"

	"movie-recommender/internal/models"
)

// Config holds the tunable parameters of the hybrid scorer. The split
// between the collaborative and content components is deliberately not
// fixed; deployments tune it through environment variables.
type Config struct {
	// CollabWeight scales the signal derived from the user's own
	// rating history. Default 0.6.
	CollabWeight float64
	// ContentWeight scales the signal derived from the candidate's
	// catalog attributes. Default 0.4.
	ContentWeight float64
	// LikedThreshold is the minimum rating at which a movie counts as
	// "liked" for favorite-genre inference. Default 7 on a 1-10 scale.
	LikedThreshold float64
	// ScaleMax is the top of the rating scale. Default 10.
	ScaleMax float64
}

// DefaultConfig returns the documented default engine parameters.
func DefaultConfig() Config {
	return Config{
		CollabWeight:   0.6,
		ContentWeight:  0.4,
		LikedThreshold: 7.0,
		ScaleMax:       models.RatingMax,
	}
}

// Engine scores and ranks candidate movies for a user. All methods are
// pure functions of their inputs: fixed rating history and fixed
// candidate attributes always produce the same output.
type Engine struct {
	cfg Config
}

// New creates an Engine with the given configuration. Zero weights are
// replaced by the defaults so a partially filled Config stays usable.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.CollabWeight <= 0 && cfg.ContentWeight <= 0 {
		cfg.CollabWeight = def.CollabWeight
		cfg.ContentWeight = def.ContentWeight
	}
	if cfg.LikedThreshold <= 0 {
		cfg.LikedThreshold = def.LikedThreshold
	}
	if cfg.ScaleMax <= 0 {
		cfg.ScaleMax = def.ScaleMax
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine parameters in effect.
func (e *Engine) Config() Config {
	return e.cfg
}

// RatedMovie pairs a movie the user has rated with the rating value.
type RatedMovie struct {
	Movie models.Movie
	Value float64
}

// ScoredMovie pairs a candidate with its hybrid score.
type ScoredMovie struct {
	Movie models.Movie
	Score float64
}

// Result is a ranked recommendation list. Fallback is true when a mood
// restriction matched nothing and the full pool was ranked instead.
type Result struct {
	Movies   []ScoredMovie
	Fallback bool
}

// FavoriteGenres aggregates genre ids across the movies the user rated
// at or above the liked threshold, weighting each occurrence by the
// rating value. Genres come back sorted by descending aggregate weight,
// ties broken by ascending genre id. A user with zero ratings yields an
// empty slice; callers fall back to popularity-based candidates.
func (e *Engine) FavoriteGenres(ratings []RatedMovie) []models.GenreWeight {
	weights := make(map[int]float64)
	for _, r := range ratings {
		if r.Value < e.cfg.LikedThreshold {
			continue
		}
		for _, g := range r.Movie.GenreIDs {
			weights[g] += r.Value
		}
	}

	out := make([]models.GenreWeight, 0, len(weights))
	for id, w := range weights {
		out = append(out, models.GenreWeight{GenreID: id, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].GenreID < out[j].GenreID
	})
	return out
}

// HybridScore combines a collaborative signal (the user's mean rating
// over previously rated movies sharing at least one genre with the
// candidate) with a content signal (normalized popularity and vote
// average). Both signals live in [0,1]; the weighted sum is rounded to
// four decimal places. maxPopularity normalizes popularity across the
// candidate pool; pass the pool maximum.
func (e *Engine) HybridScore(ratings []RatedMovie, m models.Movie, maxPopularity float64) float64 {
	collab := e.collaborative(ratings, m)
	content := e.content(m, maxPopularity)
	score := e.cfg.CollabWeight*collab + e.cfg.ContentWeight*content
	return math.Round(score*10000) / 10000
}

// collaborative returns the user's mean rating over movies sharing a
// genre with the candidate, scaled to [0,1]. With no genre overlap the
// signal is neutral: the midpoint of the scale.
func (e *Engine) collaborative(ratings []RatedMovie, m models.Movie) float64 {
	var sum float64
	var n int
	for _, r := range ratings {
		if r.Movie.SharesGenre(m.GenreIDs) {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return 0.5
	}
	return (sum / float64(n)) / e.cfg.ScaleMax
}

// content combines normalized popularity and vote average into one
// [0,1] quality signal.
func (e *Engine) content(m models.Movie, maxPopularity float64) float64 {
	var pop float64
	if maxPopularity > 0 {
		pop = m.Popularity / maxPopularity
		if pop > 1 {
			pop = 1
		}
	}
	vote := m.VoteAverage / 10.0
	if vote > 1 {
		vote = 1
	}
	return 0.5*pop + 0.5*vote
}

// Recommend scores every candidate the user has not rated, sorts by
// descending score with ties broken by descending popularity then
// ascending movie id, and truncates to limit. An empty pool yields an
// empty slice.
func (e *Engine) Recommend(ratings []RatedMovie, pool []models.Movie, limit int) []ScoredMovie {
	rated := make(map[int]bool, len(ratings))
	for _, r := range ratings {
		rated[r.Movie.ID] = true
	}

	candidates := make([]models.Movie, 0, len(pool))
	var maxPop float64
	for _, m := range pool {
		if rated[m.ID] {
			continue
		}
		if m.Popularity > maxPop {
			maxPop = m.Popularity
		}
		candidates = append(candidates, m)
	}

	scored := make([]ScoredMovie, 0, len(candidates))
	for _, m := range candidates {
		scored = append(scored, ScoredMovie{
			Movie: m,
			Score: e.HybridScore(ratings, m, maxPop),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Movie.Popularity != scored[j].Movie.Popularity {
			return scored[i].Movie.Popularity > scored[j].Movie.Popularity
		}
		return scored[i].Movie.ID < scored[j].Movie.ID
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// RecommendByMood restricts the pool to movies whose genres intersect
// the mood's mapped genres, then ranks exactly as Recommend does. When
// the restriction matches nothing the full pool is ranked instead and
// the result is flagged as a fallback so callers can tell the user no
// exact-mood matches were found. An unrecognized mood is an error.
func (e *Engine) RecommendByMood(ratings []RatedMovie, mood models.Mood, pool []models.Movie, limit int) (Result, error) {
	if _, err := models.ParseMood(string(mood)); err != nil {
		return Result{}, err
	}

	moodGenres := mood.GenreIDs()
	restricted := make([]models.Movie, 0, len(pool))
	for _, m := range pool {
		if m.SharesGenre(moodGenres) {
			restricted = append(restricted, m)
		}
	}

	if len(restricted) == 0 {
		return Result{Movies: e.Recommend(ratings, pool, limit), Fallback: true}, nil
	}
	return Result{Movies: e.Recommend(ratings, restricted, limit)}, nil
}
