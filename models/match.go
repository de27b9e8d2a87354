package models

import "time"

type MatchKind string

const (
	KindRoundRobin MatchKind = "round_robin"
	KindBracket    MatchKind = "bracket"
)

// Match is one row of the timetable: who plays, where, and when. A nil (or
// at-or-before-epoch) StartTime means the match has not been placed on the
// grid yet. NextWinnerMatchID/NextLoserMatchID are the forward bracket edges;
// predecessor sets are always derived by scanning these edges, never stored.
type Match struct {
	ID                int        `json:"id" db:"id"`
	TournamentID      int        `json:"tournament_id" db:"tournament_id"`
	DivisionID        int        `json:"division_id" db:"division_id"`
	Kind              MatchKind  `json:"kind" db:"kind"`
	StartTime         *time.Time `json:"start_time,omitempty" db:"start_time"`
	TableID           *string    `json:"table_id,omitempty" db:"table_id"`
	ParticipantAID    *int       `json:"participant_a_id,omitempty" db:"participant_a_id"`
	ParticipantBID    *int       `json:"participant_b_id,omitempty" db:"participant_b_id"`
	BracketLabel      *string    `json:"bracket_label,omitempty" db:"bracket_label"`
	NextWinnerMatchID *int       `json:"next_winner_match_id,omitempty" db:"next_winner_match_id"`
	NextLoserMatchID  *int       `json:"next_loser_match_id,omitempty" db:"next_loser_match_id"`
}

// Scheduled reports whether the match has a usable start time.
func (m *Match) Scheduled() bool {
	return m.StartTime != nil && m.StartTime.After(time.Unix(0, 0))
}

// HasParticipant reports whether participantID plays in this match.
func (m *Match) HasParticipant(participantID int) bool {
	if m.ParticipantAID != nil && *m.ParticipantAID == participantID {
		return true
	}
	if m.ParticipantBID != nil && *m.ParticipantBID == participantID {
		return true
	}
	return false
}
