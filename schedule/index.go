package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/matchdesk/tournament-portal/models"
)

// Index is the derived timetable structure for one tournament day: the
// sorted distinct slot list and a constant-time (table, slot) → match lookup.
type Index struct {
	Day       string
	TimeSlots []string
	Grid      map[string]*models.Match
}

// CellKey is the grid lookup key for a table/slot pair.
func CellKey(tableID, slot string) string {
	return tableID + "-" + slot
}

// MatchAt returns the match occupying a cell, or nil.
func (i *Index) MatchAt(tableID, slot string) *models.Match {
	return i.Grid[CellKey(tableID, slot)]
}

// Days returns the sorted distinct tournament days present among scheduled
// matches, rendered in the display timezone.
func Days(matches []*models.Match, loc *time.Location) []string {
	seen := make(map[string]bool)
	var days []string
	for _, m := range matches {
		if !m.Scheduled() {
			continue
		}
		d := DayOf(*m.StartTime, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Strings(days)
	return days
}

// position resolves the display placement of a match: the pending override
// when one exists, the authoritative assignment otherwise. The returned slot
// may be non-empty while tableID is empty for matches that have a time but no
// table yet.
func position(m *models.Match, ov *Overrides, loc *time.Location) (tableID, slot string) {
	if p, ok := ov.Get(m.ID); ok {
		return p.TableID, p.Slot
	}
	slot = SlotOf(*m.StartTime, loc)
	if m.TableID != nil {
		tableID = *m.TableID
	}
	return tableID, slot
}

// BuildIndex derives the day's index from the full match list. Pure: the
// inputs are never mutated. Overrides are applied before slot keys are
// computed so an optimistic move shows up immediately. Unscheduled matches
// (nil or at-or-before-epoch start time) contribute nothing.
func BuildIndex(day string, matches []*models.Match, ov *Overrides, loc *time.Location) *Index {
	idx := &Index{Day: day, Grid: make(map[string]*models.Match)}
	seenSlot := make(map[string]bool)
	for _, m := range matches {
		if !m.Scheduled() || DayOf(*m.StartTime, loc) != day {
			continue
		}
		tableID, slot := position(m, ov, loc)
		if slot == "" {
			continue
		}
		if !seenSlot[slot] {
			seenSlot[slot] = true
			idx.TimeSlots = append(idx.TimeSlots, slot)
		}
		if tableID != "" {
			idx.Grid[CellKey(tableID, slot)] = m
		}
	}
	sort.Strings(idx.TimeSlots)
	return idx
}

// IndexBuilder memoizes BuildIndex on (day, match-set revision, override
// version). The revision is bumped by the owning service whenever the
// authoritative match list changes; there is no caching beyond this single
// structural check.
type IndexBuilder struct {
	loc *time.Location

	mu     sync.Mutex
	day    string
	rev    int64
	ver    int64
	cached *Index
}

func NewIndexBuilder(loc *time.Location) *IndexBuilder {
	return &IndexBuilder{loc: loc}
}

func (b *IndexBuilder) Build(day string, matches []*models.Match, rev int64, ov *Overrides) *Index {
	ver := ov.Version()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cached != nil && b.day == day && b.rev == rev && b.ver == ver {
		return b.cached
	}
	idx := BuildIndex(day, matches, ov, b.loc)
	b.day, b.rev, b.ver, b.cached = day, rev, ver, idx
	return idx
}
