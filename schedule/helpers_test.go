package schedule

import (
	"io"
	"log/slog"
	"time"

	"github.com/matchdesk/tournament-portal/models"
)

func ip(v int) *int { return &v }

func sp(v string) *string { return &v }

func at(day, slot string) *time.Time {
	t, err := CombineDayAndSlot(day, slot, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gridMatch builds a scheduled match placed at (table, slot) on day.
func gridMatch(id int, kind models.MatchKind, table, day, slot string) *models.Match {
	m := &models.Match{
		ID:           id,
		TournamentID: 1,
		DivisionID:   1,
		Kind:         kind,
		StartTime:    at(day, slot),
	}
	if table != "" {
		m.TableID = sp(table)
	}
	return m
}
