package study

import (
	"time"

	"github.com/example/flashdeck/internal/progress"
	"github.com/example/flashdeck/pkg/models"
)

// HistoryChartDays is how many days the overview charts
const HistoryChartDays = 7

// Overview summarises a learner's progress
type Overview struct {
	DisplayName     string
	TotalCards      int
	TotalReviews    int
	StudiedCards    int // cards reviewed at least once
	Accuracy        int // percent
	NeedPractice    int // cards answered wrong more often than right
	Favorites       int
	CustomEntries   int
	LastImport      time.Time // zero when never imported
	Session         models.SessionStats
	SessionAccuracy int // percent
	History         []models.HistoryPoint
}

// Overview computes the progress summary
func (c *Controller) Overview() Overview {
	totals := c.snap.CardStats.Totals()

	o := Overview{
		DisplayName:     c.snap.DisplayName,
		TotalCards:      len(c.all),
		TotalReviews:    totals.Reviews,
		StudiedCards:    totals.StudiedCards,
		Accuracy:        totals.Accuracy(),
		NeedPractice:    totals.NeedPractice,
		Favorites:       len(c.FavoriteCards()),
		CustomEntries:   max(0, len(c.combined)-c.baseUnique),
		Session:         c.snap.Session,
		SessionAccuracy: c.snap.Session.Accuracy(),
		History:         progress.LastDays(c.snap.History, c.now(), HistoryChartDays),
	}
	if c.snap.CustomUpdatedAt > 0 {
		o.LastImport = time.UnixMilli(c.snap.CustomUpdatedAt)
	}
	return o
}

// StudiedToday reports whether any review was recorded today
func (c *Controller) StudiedToday() bool {
	return c.snap.History[progress.DayKey(c.now())].Seen > 0
}
