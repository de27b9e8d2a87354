package schedule

import (
	"testing"
	"time"

	"github.com/matchdesk/tournament-portal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredecessorsAndSuccessors(t *testing.T) {
	semiA := gridMatch(1, models.KindBracket, "T1", testDay, "10:00")
	semiA.NextWinnerMatchID = ip(3)
	semiB := gridMatch(2, models.KindBracket, "T2", testDay, "10:00")
	semiB.NextWinnerMatchID = ip(3)
	semiB.NextLoserMatchID = ip(4)
	final := gridMatch(3, models.KindBracket, "T1", testDay, "14:00")
	consolation := gridMatch(4, models.KindBracket, "T2", testDay, "12:00")
	all := []*models.Match{semiA, semiB, final, consolation}

	preds := Predecessors(final, all)
	require.Len(t, preds, 2)
	assert.Equal(t, 1, preds[0].ID)
	assert.Equal(t, 2, preds[1].ID)

	succs := Successors(semiB, all)
	require.Len(t, succs, 2)
	assert.Empty(t, Predecessors(semiA, all))
	assert.Empty(t, Successors(final, all))
}

func TestTimeValid(t *testing.T) {
	pred := gridMatch(1, models.KindBracket, "T1", testDay, "10:00")
	pred.NextWinnerMatchID = ip(2)
	mid := gridMatch(2, models.KindBracket, "T1", testDay, "12:00")
	mid.NextWinnerMatchID = ip(3)
	succ := gridMatch(3, models.KindBracket, "T2", testDay, "14:00")
	all := []*models.Match{pred, mid, succ}

	candidate := func(slot string) time.Time {
		return *at(testDay, slot)
	}

	tests := []struct {
		name string
		slot string
		want bool
	}{
		{"between neighbors", "11:00", true},
		{"equal to predecessor", "10:00", false},
		{"before predecessor", "09:30", false},
		{"equal to successor", "14:00", false},
		{"after successor", "15:00", false},
		{"just after predecessor", "10:05", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeValid(mid, candidate(tt.slot), all))
		})
	}
}

func TestTimeValidIgnoresUnscheduledNeighbors(t *testing.T) {
	pred := &models.Match{ID: 1, TournamentID: 1, Kind: models.KindBracket, NextWinnerMatchID: ip(2)}
	mid := gridMatch(2, models.KindBracket, "T1", testDay, "12:00")
	mid.NextWinnerMatchID = ip(3)
	succ := &models.Match{ID: 3, TournamentID: 1, Kind: models.KindBracket}
	all := []*models.Match{pred, mid, succ}

	// Unscheduled neighbors impose no bound in either direction.
	assert.True(t, TimeValid(mid, *at(testDay, "08:00"), all))
	assert.True(t, TimeValid(mid, *at(testDay, "23:00"), all))
}

func TestTimeValidNoNeighbors(t *testing.T) {
	m := gridMatch(1, models.KindRoundRobin, "T1", testDay, "10:00")
	assert.True(t, TimeValid(m, *at(testDay, "09:00"), []*models.Match{m}))
}
