package progress

import (
	"sort"
	"time"

	"github.com/example/flashdeck/pkg/models"
)

// HistoryDays is the number of most recent days kept in the study history
const HistoryDays = 14

// DayLayout formats history day keys
const DayLayout = "2006-01-02"

// DayKey returns the UTC calendar day of t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// RecordDay counts one outcome for the day containing now and trims the
// history to the most recent HistoryDays days. The input map is not modified.
func RecordDay(h models.StudyHistory, now time.Time, isCorrect bool) models.StudyHistory {
	out := make(models.StudyHistory, len(h)+1)
	for k, v := range h {
		out[k] = v
	}

	key := DayKey(now)
	day := out[key]
	day.Seen++
	if isCorrect {
		day.Correct++
	}
	out[key] = day

	return Trim(out, HistoryDays)
}

// Trim keeps the keep lexicographically greatest day keys, which for
// YYYY-MM-DD keys are the most recent days
func Trim(h models.StudyHistory, keep int) models.StudyHistory {
	if len(h) <= keep {
		return h
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys[:len(keys)-keep] {
		delete(h, k)
	}
	return h
}

// LastDays returns one point per calendar day for the n days ending at now,
// oldest first; days without reviews are zero
func LastDays(h models.StudyHistory, now time.Time, n int) []models.HistoryPoint {
	now = now.UTC()
	points := make([]models.HistoryPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := DayKey(now.AddDate(0, 0, -i))
		day := h[key]
		points = append(points, models.HistoryPoint{Day: key, Seen: day.Seen, Correct: day.Correct})
	}
	return points
}

// ValidDayKey reports whether key is a well-formed day key
func ValidDayKey(key string) bool {
	_, err := time.Parse(DayLayout, key)
	return err == nil
}
