package schedule

import (
	"time"

	"github.com/matchdesk/tournament-portal/models"
)

// HasParticipantClash reports whether any other match at slot on the given
// day shares a participant with dragged, on any table. A player cannot play
// two round-robin matches at the same time even on different tables. Matches
// on other days never conflict: the slot key is wall-clock only, so the day
// disambiguates. Bracket matches never trigger this check; bracket order
// covers them.
func HasParticipantClash(day, slot string, dragged *models.Match, matches []*models.Match, ov *Overrides, loc *time.Location) bool {
	if dragged.Kind != models.KindRoundRobin {
		return false
	}
	for _, other := range matches {
		if other.ID == dragged.ID || !other.Scheduled() {
			continue
		}
		if DayOf(*other.StartTime, loc) != day {
			continue
		}
		if _, otherSlot := position(other, ov, loc); otherSlot != slot {
			continue
		}
		if shareParticipant(dragged, other) {
			return true
		}
	}
	return false
}

func shareParticipant(a, b *models.Match) bool {
	if a.ParticipantAID != nil && b.HasParticipant(*a.ParticipantAID) {
		return true
	}
	if a.ParticipantBID != nil && b.HasParticipant(*a.ParticipantBID) {
		return true
	}
	return false
}
