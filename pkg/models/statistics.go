package models

import "time"

// CardStats tracks the review history of a single flashcard.
// Seen always equals Correct + Incorrect.
type CardStats struct {
	Seen         int   `json:"seen" validate:"gte=0"`
	Correct      int   `json:"correct" validate:"gte=0"`
	Incorrect    int   `json:"incorrect" validate:"gte=0"`
	LastReviewed int64 `json:"lastReviewed" validate:"gte=0"` // Unix milliseconds
}

// LastReviewedAt returns the last review time
func (s CardStats) LastReviewedAt() time.Time {
	return time.UnixMilli(s.LastReviewed)
}

// Consistent reports whether the counters agree with each other
func (s CardStats) Consistent() bool {
	return s.Seen == s.Correct+s.Incorrect
}

// DayStats aggregates the reviews of one calendar day
type DayStats struct {
	Seen    int `json:"seen" validate:"gte=0"`
	Correct int `json:"correct" validate:"gte=0,ltefield=Seen"`
}

// StudyHistory maps a YYYY-MM-DD day key to that day's totals
type StudyHistory map[string]DayStats

// HistoryPoint is one day of history, used for charts and summaries
type HistoryPoint struct {
	Day     string
	Seen    int
	Correct int
}
