package schedule

import (
	"testing"
	"time"

	"github.com/matchdesk/tournament-portal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDay = "2025-07-12"

func TestBuildIndex(t *testing.T) {
	epoch := time.Unix(0, 0)
	matches := []*models.Match{
		gridMatch(1, models.KindRoundRobin, "T1", testDay, "10:00"),
		gridMatch(2, models.KindRoundRobin, "T2", testDay, "10:00"),
		gridMatch(3, models.KindRoundRobin, "T1", testDay, "11:30"),
		gridMatch(4, models.KindBracket, "", testDay, "13:00"), // time but no table yet
		gridMatch(5, models.KindRoundRobin, "T1", "2025-07-13", "10:00"),
		{ID: 6, TournamentID: 1, Kind: models.KindBracket},                    // unscheduled
		{ID: 7, TournamentID: 1, Kind: models.KindBracket, StartTime: &epoch}, // epoch sentinel
	}

	idx := BuildIndex(testDay, matches, nil, time.UTC)

	assert.Equal(t, []string{"10:00", "11:30", "13:00"}, idx.TimeSlots)

	require.NotNil(t, idx.MatchAt("T1", "10:00"))
	assert.Equal(t, 1, idx.MatchAt("T1", "10:00").ID)
	assert.Equal(t, 2, idx.MatchAt("T2", "10:00").ID)
	assert.Equal(t, 3, idx.MatchAt("T1", "11:30").ID)

	// The table-less match contributes its slot but occupies no cell.
	for key := range idx.Grid {
		assert.NotEqual(t, 4, idx.Grid[key].ID)
	}
	// Off-day and unscheduled matches contribute nothing.
	assert.Nil(t, idx.MatchAt("T1", "13:00"))
	assert.Len(t, idx.Grid, 3)
}

func TestBuildIndexAppliesOverrides(t *testing.T) {
	m := gridMatch(1, models.KindRoundRobin, "T1", testDay, "10:00")
	ov := NewOverrides()
	ov.Apply([]Edit{{MatchID: 1, TableID: "T3", Slot: "12:00"}})

	idx := BuildIndex(testDay, []*models.Match{m}, ov, time.UTC)

	assert.Nil(t, idx.MatchAt("T1", "10:00"))
	require.NotNil(t, idx.MatchAt("T3", "12:00"))
	assert.Equal(t, []string{"12:00"}, idx.TimeSlots)

	// The authoritative match itself is untouched.
	assert.Equal(t, "T1", *m.TableID)
	assert.Equal(t, "10:00", SlotOf(*m.StartTime, time.UTC))
}

func TestDays(t *testing.T) {
	matches := []*models.Match{
		gridMatch(1, models.KindRoundRobin, "T1", "2025-07-13", "10:00"),
		gridMatch(2, models.KindRoundRobin, "T1", "2025-07-12", "10:00"),
		gridMatch(3, models.KindRoundRobin, "T2", "2025-07-12", "11:00"),
		{ID: 4, TournamentID: 1, Kind: models.KindBracket},
	}
	assert.Equal(t, []string{"2025-07-12", "2025-07-13"}, Days(matches, time.UTC))
}

func TestIndexBuilderMemoization(t *testing.T) {
	matches := []*models.Match{gridMatch(1, models.KindRoundRobin, "T1", testDay, "10:00")}
	ov := NewOverrides()
	b := NewIndexBuilder(time.UTC)

	first := b.Build(testDay, matches, 1, ov)
	second := b.Build(testDay, matches, 1, ov)
	assert.Same(t, first, second)

	// A revision bump invalidates the cache.
	third := b.Build(testDay, matches, 2, ov)
	assert.NotSame(t, first, third)

	// So does any override write.
	ov.Apply([]Edit{{MatchID: 1, TableID: "T2", Slot: "11:00"}})
	fourth := b.Build(testDay, matches, 2, ov)
	assert.NotSame(t, third, fourth)
	require.NotNil(t, fourth.MatchAt("T2", "11:00"))

	// A different day is not served from the cache either.
	other := b.Build("2025-07-13", matches, 2, ov)
	assert.NotSame(t, fourth, other)
}
