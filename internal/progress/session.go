package progress

import (
	"strings"
	"time"

	"github.com/example/flashdeck/pkg/models"
	"github.com/google/uuid"
)

// NewSession starts an empty session at now
func NewSession(now time.Time) models.SessionStats {
	return models.SessionStats{
		ID:        uuid.NewString(),
		Notes:     []string{},
		StartedAt: now.UnixMilli(),
	}
}

// RecordSessionResult counts one outcome in the session
func RecordSessionResult(s models.SessionStats, isCorrect bool) models.SessionStats {
	s.Seen++
	if isCorrect {
		s.Correct++
	} else {
		s.Incorrect++
	}
	return s
}

// AddNote prepends the trimmed note. Blank notes are ignored and reported
// through the second return value.
func AddNote(s models.SessionStats, note string) (models.SessionStats, bool) {
	note = strings.TrimSpace(note)
	if note == "" {
		return s, false
	}
	notes := make([]string, 0, len(s.Notes)+1)
	notes = append(notes, note)
	s.Notes = append(notes, s.Notes...)
	return s, true
}
