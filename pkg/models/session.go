package models

import "time"

// SessionStats tracks the current study session
type SessionStats struct {
	ID        string   `json:"id,omitempty"`
	Seen      int      `json:"seen" validate:"gte=0"`
	Correct   int      `json:"correct" validate:"gte=0"`
	Incorrect int      `json:"incorrect" validate:"gte=0"`
	Notes     []string `json:"notes"` // newest first
	StartedAt int64    `json:"startedAt" validate:"gte=0"` // Unix milliseconds
}

// StartedAtTime returns the session start time
func (s SessionStats) StartedAtTime() time.Time {
	return time.UnixMilli(s.StartedAt)
}

// Consistent reports whether the counters agree with each other
func (s SessionStats) Consistent() bool {
	return s.Seen == s.Correct+s.Incorrect
}

// Accuracy returns the rounded percentage of correct answers in the session
func (s SessionStats) Accuracy() int {
	if s.Seen == 0 {
		return 0
	}
	return int(float64(s.Correct)/float64(s.Seen)*100 + 0.5)
}
