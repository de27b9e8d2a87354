package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matchdesk/tournament-portal/models"
)

// Edit is one record of the batched schedule mutation: move match_id to the
// given table at the given timestamp. Slot is the HH:MM key the edit lands on
// in the display timezone; it drives the optimistic override and is not part
// of the wire contract.
type Edit struct {
	MatchID int       `json:"match_id"`
	TableID string    `json:"table"`
	Time    time.Time `json:"time"`
	Slot    string    `json:"-"`
}

// Mutator is the external persistence collaborator. The whole edit set is
// applied as one logical unit: all edits commit or none do.
type Mutator interface {
	ApplyEdits(ctx context.Context, tournamentID int, edits []Edit) error
}

// MoveRequest is one drag (or manual) reassignment of a match to a grid cell.
type MoveRequest struct {
	Match       *models.Match
	Day         string
	TargetTable string
	TargetSlot  string
}

// Coordinator runs reschedule transactions: validate, compute the edit set,
// apply the optimistic overrides, invoke the mutation, and roll back to the
// pre-move snapshot on failure. A single-slot in-flight guard rejects a
// second move while one is pending.
type Coordinator struct {
	mutator   Mutator
	overrides *Overrides
	loc       *time.Location
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight bool
}

func NewCoordinator(mutator Mutator, overrides *Overrides, loc *time.Location, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		mutator:   mutator,
		overrides: overrides,
		loc:       loc,
		logger:    logger,
	}
}

// Overrides exposes the store the coordinator owns, for index building.
func (c *Coordinator) Overrides() *Overrides {
	return c.overrides
}

// InFlight reports whether a move is currently awaiting confirmation.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Move executes one reschedule transaction against the tournament's full
// match set; bracket neighbors may sit on other days, the clash check scopes
// itself to the target day. A rejected validation mutates nothing. When the
// target cell is occupied the occupant is displaced to the dragged match's
// source cell and both edits form one atomic set. The returned edit set is
// what was confirmed; an empty set means the drop was a no-op (match dropped
// onto its own cell).
func (c *Coordinator) Move(ctx context.Context, tournamentID int, req MoveRequest, matches []*models.Match) ([]Edit, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrMoveInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	m := req.Match
	candidate, err := CombineDayAndSlot(req.Day, req.TargetSlot, c.loc)
	if err != nil {
		return nil, err
	}

	if !TimeValid(m, candidate, matches) {
		return nil, fmt.Errorf("%w: match %d cannot start at %s", ErrBracketOrder, m.ID, req.TargetSlot)
	}
	if HasParticipantClash(req.Day, req.TargetSlot, m, matches, c.overrides, c.loc) {
		return nil, fmt.Errorf("%w: match %d at %s", ErrParticipantClash, m.ID, req.TargetSlot)
	}

	idx := BuildIndex(req.Day, matches, c.overrides, c.loc)
	edits := []Edit{{MatchID: m.ID, TableID: req.TargetTable, Time: candidate, Slot: req.TargetSlot}}

	if occupant := idx.MatchAt(req.TargetTable, req.TargetSlot); occupant != nil {
		if occupant.ID == m.ID {
			// Dropped onto its own cell.
			return nil, nil
		}
		if !m.Scheduled() || DayOf(*m.StartTime, c.loc) != req.Day {
			return nil, fmt.Errorf("%w: match %d cannot displace match %d", ErrNotOnGrid, m.ID, occupant.ID)
		}
		srcTable, srcSlot := position(m, c.overrides, c.loc)
		if srcTable == "" {
			return nil, fmt.Errorf("%w: match %d cannot displace match %d", ErrNotOnGrid, m.ID, occupant.ID)
		}
		srcTime, err := CombineDayAndSlot(req.Day, srcSlot, c.loc)
		if err != nil {
			return nil, err
		}
		edits = append(edits, Edit{MatchID: occupant.ID, TableID: srcTable, Time: srcTime, Slot: srcSlot})
	}

	snapshot := c.overrides.Snapshot()
	c.overrides.Apply(edits)

	if err := c.mutator.ApplyEdits(ctx, tournamentID, edits); err != nil {
		c.overrides.Restore(snapshot)
		c.logger.Warn("reschedule rolled back",
			slog.Int("tournament_id", tournamentID),
			slog.Int("match_id", m.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: match %d to (%s, %s): %w", ErrMutationFailed, m.ID, req.TargetTable, req.TargetSlot, err)
	}

	c.logger.Info("reschedule confirmed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("match_id", m.ID),
		slog.String("table", req.TargetTable),
		slog.String("slot", req.TargetSlot),
		slog.Int("edits", len(edits)),
	)
	return edits, nil
}
