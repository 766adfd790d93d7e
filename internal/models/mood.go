package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMood is returned when a mood value is not in the enumerated set.
var ErrUnknownMood = errors.New("unknown mood")

// Mood is an enumerated mood a user can ask recommendations for. Each
// mood maps to a fixed set of TMDB genre ids; representing moods as a
// type rather than free-form strings keeps typos from silently
// matching nothing.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodExcited Mood = "excited"
	MoodRelaxed Mood = "relaxed"
	MoodScared  Mood = "scared"
	MoodCurious Mood = "curious"
)

// moodGenres maps each mood to TMDB genre ids.
var moodGenres = map[Mood][]int{
	MoodHappy:   {35, 10751, 16}, // Comedy, Family, Animation
	MoodSad:     {18, 10749},     // Drama, Romance
	MoodExcited: {28, 12, 53},    // Action, Adventure, Thriller
	MoodRelaxed: {99, 10402},     // Documentary, Music
	MoodScared:  {27, 9648},      // Horror, Mystery
	MoodCurious: {878, 14},       // Science Fiction, Fantasy
}

// ParseMood validates a mood string against the enumerated set.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := moodGenres[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
	}
	return m, nil
}

// GenreIDs returns the genre ids mapped to the mood.
func (m Mood) GenreIDs() []int {
	ids := moodGenres[m]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Moods returns every valid mood value.
func Moods() []Mood {
	return []Mood{MoodHappy, MoodSad, MoodExcited, MoodRelaxed, MoodScared, MoodCurious}
}
