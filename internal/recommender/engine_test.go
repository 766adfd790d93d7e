package recommender

import (
	"testing"

	"movie-recommender/internal/models"
)

const (
	genreAction = 28
	genreComedy = 35
	genreDrama  = 18
	genreHorror = 27
)

func movie(id int, popularity, vote float64, genres ...int) models.Movie {
	return models.Movie{
		ID:          id,
		TMDBId:      id + 1000,
		Title:       "movie",
		Popularity:  popularity,
		VoteAverage: vote,
		GenreIDs:    genres,
	}
}

func rated(id int, value float64, genres ...int) RatedMovie {
	return RatedMovie{Movie: movie(id, 10, 7, genres...), Value: value}
}

func TestFavoriteGenresEmptyHistory(t *testing.T) {
	e := New(DefaultConfig())

	got := e.FavoriteGenres(nil)
	if len(got) != 0 {
		t.Errorf("expected empty favorites for zero ratings, got %v", got)
	}

	got = e.FavoriteGenres([]RatedMovie{})
	if len(got) != 0 {
		t.Errorf("expected empty favorites for empty slice, got %v", got)
	}
}

func TestFavoriteGenresWeightsAndOrder(t *testing.T) {
	e := New(DefaultConfig())

	// Three liked action movies and one disliked comedy. The comedy is
	// below the liked threshold and must not appear at all.
	history := []RatedMovie{
		rated(1, 9, genreAction),
		rated(2, 8, genreAction),
		rated(3, 9, genreAction),
		rated(4, 3, genreComedy),
	}

	got := e.FavoriteGenres(history)
	if len(got) != 1 {
		t.Fatalf("expected 1 favorite genre, got %d: %v", len(got), got)
	}
	if got[0].GenreID != genreAction {
		t.Errorf("expected Action (%d) first, got %d", genreAction, got[0].GenreID)
	}
	if got[0].Weight != 26 {
		t.Errorf("expected aggregate weight 26, got %v", got[0].Weight)
	}
}

func TestFavoriteGenresTieBrokenByGenreID(t *testing.T) {
	e := New(DefaultConfig())

	// Drama (18) and Comedy (35) end up with identical weight; the
	// lower genre id must come first.
	history := []RatedMovie{
		rated(1, 8, genreComedy),
		rated(2, 8, genreDrama),
	}

	got := e.FavoriteGenres(history)
	if len(got) != 2 {
		t.Fatalf("expected 2 genres, got %d", len(got))
	}
	if got[0].GenreID != genreDrama || got[1].GenreID != genreComedy {
		t.Errorf("expected [%d %d], got [%d %d]", genreDrama, genreComedy, got[0].GenreID, got[1].GenreID)
	}
}

func TestHybridScoreDeterministic(t *testing.T) {
	e := New(DefaultConfig())
	history := []RatedMovie{
		rated(1, 9, genreAction),
		rated(2, 4, genreComedy),
	}
	candidate := movie(10, 55.5, 7.3, genreAction, genreDrama)

	first := e.HybridScore(history, candidate, 100)
	for i := 0; i < 50; i++ {
		if got := e.HybridScore(history, candidate, 100); got != first {
			t.Fatalf("score changed between calls: %v then %v", first, got)
		}
	}
}

func TestHybridScoreNeutralWithoutOverlap(t *testing.T) {
	e := New(DefaultConfig())
	history := []RatedMovie{rated(1, 10, genreAction)}

	// No shared genre: the collaborative component sits at the scale
	// midpoint, so only content separates these.
	noOverlap := movie(10, 0, 0, genreHorror)
	got := e.HybridScore(history, noOverlap, 100)
	want := 0.6 * 0.5 // collaborative midpoint, zero content
	if got != want {
		t.Errorf("expected %v for no-overlap zero-content candidate, got %v", want, got)
	}
}

func TestHybridScorePrefersLikedGenres(t *testing.T) {
	e := New(DefaultConfig())
	history := []RatedMovie{
		rated(1, 9, genreAction),
		rated(2, 9, genreAction),
		rated(3, 2, genreComedy),
	}

	action := movie(10, 50, 7, genreAction)
	comedy := movie(11, 50, 7, genreComedy)

	actionScore := e.HybridScore(history, action, 50)
	comedyScore := e.HybridScore(history, comedy, 50)
	if actionScore <= comedyScore {
		t.Errorf("expected action score %v > comedy score %v", actionScore, comedyScore)
	}
}

func TestRecommendLengthAndOrder(t *testing.T) {
	e := New(DefaultConfig())
	history := []RatedMovie{rated(100, 8, genreAction)}

	pool := []models.Movie{
		movie(1, 10, 5, genreAction),
		movie(2, 90, 9, genreAction),
		movie(3, 40, 6, genreComedy),
		movie(4, 70, 8, genreAction),
		movie(5, 20, 4, genreDrama),
	}

	for _, limit := range []int{0, 1, 3, 5, 10} {
		got := e.Recommend(history, pool, limit)

		wantLen := limit
		if wantLen > len(pool) {
			wantLen = len(pool)
		}
		if len(got) != wantLen {
			t.Errorf("limit %d: expected %d results, got %d", limit, wantLen, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Score > got[i-1].Score {
				t.Errorf("limit %d: results not sorted by non-increasing score at %d", limit, i)
			}
		}
	}
}

func TestRecommendEmptyPool(t *testing.T) {
	e := New(DefaultConfig())
	got := e.Recommend(nil, nil, 10)
	if len(got) != 0 {
		t.Errorf("expected empty result for empty pool, got %d", len(got))
	}
}

func TestRecommendExcludesRatedMovies(t *testing.T) {
	e := New(DefaultConfig())
	history := []RatedMovie{rated(1, 9, genreAction)}

	pool := []models.Movie{
		movie(1, 50, 7, genreAction), // already rated
		movie(2, 40, 6, genreAction),
	}

	got := e.Recommend(history, pool, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Movie.ID != 2 {
		t.Errorf("expected movie 2, got %d", got[0].Movie.ID)
	}
}

func TestRecommendTieBreakPopularityThenID(t *testing.T) {
	e := New(DefaultConfig())

	// Identical genres and vote averages. Movies 2 and 3 tie on score
	// and popularity, so the lower id wins; movie 1 has top popularity.
	pool := []models.Movie{
		movie(3, 50, 7, genreAction),
		movie(1, 80, 7, genreAction),
		movie(2, 50, 7, genreAction),
	}
	// Equalize content scores so ordering is purely the tie-break:
	// same pool maximum applies to all, so popularity still differs.
	got := e.Recommend(nil, pool, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Movie.ID != 1 {
		t.Errorf("expected most popular movie first, got id %d", got[0].Movie.ID)
	}
	if got[1].Movie.ID != 2 || got[2].Movie.ID != 3 {
		t.Errorf("expected id ascending among score+popularity ties, got [%d %d]",
			got[1].Movie.ID, got[2].Movie.ID)
	}
}

func TestRecommendTopThreeOfTen(t *testing.T) {
	e := New(DefaultConfig())

	pool := make([]models.Movie, 0, 10)
	for i := 1; i <= 10; i++ {
		// Popularity and vote rise with id, so the highest ids score best.
		pool = append(pool, movie(i, float64(i*10), float64(i)/2+4, genreAction))
	}

	got := e.Recommend(nil, pool, 3)
	if len(got) != 3 {
		t.Fatalf("expected exactly 3 results, got %d", len(got))
	}
	wantIDs := []int{10, 9, 8}
	for i, want := range wantIDs {
		if got[i].Movie.ID != want {
			t.Errorf("position %d: expected movie %d, got %d", i, want, got[i].Movie.ID)
		}
	}
}

func TestRecommendByMoodRestrictsPool(t *testing.T) {
	e := New(DefaultConfig())

	pool := []models.Movie{
		movie(1, 90, 9, genreAction),
		movie(2, 50, 7, genreDrama),
		movie(3, 40, 6, genreComedy),
	}

	result, err := e.RecommendByMood(nil, models.MoodSad, pool, 10)
	if err != nil {
		t.Fatalf("RecommendByMood failed: %v", err)
	}
	if result.Fallback {
		t.Error("expected no fallback when mood genres match")
	}
	if len(result.Movies) != 1 {
		t.Fatalf("expected 1 drama result, got %d", len(result.Movies))
	}
	if result.Movies[0].Movie.ID != 2 {
		t.Errorf("expected drama movie 2, got %d", result.Movies[0].Movie.ID)
	}
}

func TestRecommendByMoodFallback(t *testing.T) {
	e := New(DefaultConfig())

	// Nothing in the pool maps to the "sad" genres: the full pool must
	// be ranked and the result flagged.
	pool := []models.Movie{
		movie(1, 90, 9, genreAction),
		movie(2, 50, 7, genreComedy),
	}

	result, err := e.RecommendByMood(nil, models.MoodSad, pool, 5)
	if err != nil {
		t.Fatalf("RecommendByMood failed: %v", err)
	}
	if !result.Fallback {
		t.Error("expected fallback flag when no candidate matches the mood")
	}
	if len(result.Movies) != 2 {
		t.Errorf("expected the full pool ranked on fallback, got %d results", len(result.Movies))
	}
}

func TestRecommendByMoodUnknownMood(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.RecommendByMood(nil, models.Mood("melancholic"), []models.Movie{movie(1, 1, 1)}, 5)
	if err == nil {
		t.Fatal("expected error for unknown mood")
	}
}

func TestConfigDefaultsApplied(t *testing.T) {
	e := New(Config{})
	cfg := e.Config()
	def := DefaultConfig()
	if cfg != def {
		t.Errorf("expected zero config replaced by defaults, got %+v", cfg)
	}
}
