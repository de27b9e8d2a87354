package schedule

import (
	"time"

	"github.com/matchdesk/tournament-portal/models"
)

// Predecessors returns every match whose winner or loser edge feeds into m.
// Always a scan over the forward edges of the full day set; predecessor
// back-references are never stored.
func Predecessors(m *models.Match, all []*models.Match) []*models.Match {
	var preds []*models.Match
	for _, other := range all {
		if other.ID == m.ID {
			continue
		}
		if (other.NextWinnerMatchID != nil && *other.NextWinnerMatchID == m.ID) ||
			(other.NextLoserMatchID != nil && *other.NextLoserMatchID == m.ID) {
			preds = append(preds, other)
		}
	}
	return preds
}

// Successors returns the matches referenced by m's own forward edges, at most
// one via the win path and one via the loss path.
func Successors(m *models.Match, all []*models.Match) []*models.Match {
	var succs []*models.Match
	for _, other := range all {
		if other.ID == m.ID {
			continue
		}
		if (m.NextWinnerMatchID != nil && *m.NextWinnerMatchID == other.ID) ||
			(m.NextLoserMatchID != nil && *m.NextLoserMatchID == other.ID) {
			succs = append(succs, other)
		}
	}
	return succs
}

// TimeValid reports whether candidate respects bracket order: strictly after
// the latest scheduled predecessor and strictly before the earliest scheduled
// successor. Unscheduled neighbors impose no constraint. The check must run
// against the day's full match set, not a filtered view, since neighbors may
// sit on another table or off-screen.
func TimeValid(m *models.Match, candidate time.Time, all []*models.Match) bool {
	var latestPred, earliestSucc *time.Time
	for _, p := range Predecessors(m, all) {
		if !p.Scheduled() {
			continue
		}
		if latestPred == nil || p.StartTime.After(*latestPred) {
			latestPred = p.StartTime
		}
	}
	for _, s := range Successors(m, all) {
		if !s.Scheduled() {
			continue
		}
		if earliestSucc == nil || s.StartTime.Before(*earliestSucc) {
			earliestSucc = s.StartTime
		}
	}
	if latestPred != nil && !candidate.After(*latestPred) {
		return false
	}
	if earliestSucc != nil && !candidate.Before(*earliestSucc) {
		return false
	}
	return true
}
