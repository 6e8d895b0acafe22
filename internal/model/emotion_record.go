package model

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	MinEmotions     = 1
	MaxEmotions     = 3
	MaxAnswerLength = 100
)

// ErrEmotionCount is returned when a record has fewer than 1 or more than 3 emotions.
var ErrEmotionCount = errors.New("must provide 1 to 3 emotions")

// EmotionCategories are the six primary emotions a check-in can be tagged with.
var EmotionCategories = []string{"sad", "mad", "scared", "joyful", "powerful", "peaceful"}

// Feelings are the polarity values of an emotion entry.
var Feelings = []string{"positive", "negative", "unsure"}

// Emotion is one tagged emotion inside a record.
type Emotion struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Feeling     string `json:"feeling"`
	Intensity   int    `json:"intensity"`
}

// Validate checks category, feeling, intensity range and a non-empty subcategory.
func (e Emotion) Validate() error {
	if !contains(EmotionCategories, e.Category) {
		return fmt.Errorf("invalid emotion category %q", e.Category)
	}
	if e.Subcategory == "" {
		return fmt.Errorf("subcategory is required")
	}
	if !contains(Feelings, e.Feeling) {
		return fmt.Errorf("invalid feeling %q", e.Feeling)
	}
	if e.Intensity < 1 || e.Intensity > 5 {
		return fmt.Errorf("intensity must be between 1 and 5")
	}
	return nil
}

// EmotionRecord is one client's check-in for a single calendar day.
type EmotionRecord struct {
	ID        uint64    `json:"id"`
	ClientID  uint64    `json:"clientId"`
	Date      time.Time `json:"date"`
	Answer1   string    `json:"answer1"`
	Answer2   string    `json:"answer2"`
	Answer3   string    `json:"answer3"`
	Emotions  []Emotion `json:"emotions"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate enforces the 1..3 emotion bound, each entry and the answer lengths.
func (r EmotionRecord) Validate() error {
	if len(r.Emotions) < MinEmotions || len(r.Emotions) > MaxEmotions {
		return ErrEmotionCount
	}
	for i, e := range r.Emotions {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("emotions[%d]: %w", i, err)
		}
	}
	for i, a := range []string{r.Answer1, r.Answer2, r.Answer3} {
		if utf8.RuneCountInString(a) > MaxAnswerLength {
			return fmt.Errorf("answer%d must be at most %d characters", i+1, MaxAnswerLength)
		}
	}
	return nil
}

// Day truncates t to midnight UTC.  Records are unique per client per Day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
