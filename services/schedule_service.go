package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/matchdesk/tournament-portal/models"
	"github.com/matchdesk/tournament-portal/repositories"
	"github.com/matchdesk/tournament-portal/schedule"
	"github.com/matchdesk/tournament-portal/storage"
	"golang.org/x/sync/errgroup"
)

// TimetableView is the grid response for one tournament day.
type TimetableView struct {
	Day       string                   `json:"day"`
	Days      []string                 `json:"days"`
	Tables    []models.Table           `json:"tables"`
	TimeSlots []string                 `json:"time_slots"`
	Grid      map[string]*models.Match `json:"grid"`
}

// MoveParams describes a drag or manual reassignment of one match.
type MoveParams struct {
	MatchID  int
	Day      string
	TableID  string
	TimeSlot string
}

// SlotShiftParams retimes one slot column of the active day.
type SlotShiftParams struct {
	Day       string
	SlotIndex int
	Time      string
}

type ScheduleService interface {
	Timetable(ctx context.Context, tournamentID int, day string) (*TimetableView, error)
	MoveMatch(ctx context.Context, tournamentID int, params MoveParams) ([]schedule.Edit, error)
	ShiftSlot(ctx context.Context, tournamentID int, params SlotShiftParams) (*schedule.SlotShift, error)
	PublishTimetable(ctx context.Context, tournamentID int, day string) (*storage.UploadResult, error)
	ListTables(ctx context.Context, tournamentID int) ([]*models.Table, error)
}

type scheduleService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	tableRepo repositories.TableRepository
	uploader  storage.FileUploader
	hub       *schedule.Hub
	loc       *time.Location
	logger    *slog.Logger

	overrides   *schedule.Overrides
	coordinator *schedule.Coordinator
	mutator     schedule.Mutator
	indexes     *schedule.IndexBuilder
	revision    atomic.Int64
}

// NewScheduleService wires the scheduler core to its collaborators. uploader
// and hub may be nil; publishing and live updates are then disabled.
func NewScheduleService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tableRepo repositories.TableRepository,
	uploader storage.FileUploader,
	hub *schedule.Hub,
	loc *time.Location,
	logger *slog.Logger,
) ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &scheduleService{
		db:        db,
		matchRepo: matchRepo,
		tableRepo: tableRepo,
		uploader:  uploader,
		hub:       hub,
		loc:       loc,
		logger:    logger,
		overrides: schedule.NewOverrides(),
		indexes:   schedule.NewIndexBuilder(loc),
	}
	s.mutator = &txMutator{db: db, matchRepo: matchRepo}
	s.coordinator = schedule.NewCoordinator(s.mutator, s.overrides, loc, logger)
	return s
}

func (s *scheduleService) Timetable(ctx context.Context, tournamentID int, day string) (*TimetableView, error) {
	var (
		matches []*models.Match
		tables  []*models.Table
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gctx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		tables, err = s.tableRepo.ListByTournament(gctx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %w", ErrTimetableListFailed, tournamentID, err)
	}

	// The authoritative refetch supersedes confirmed optimistic moves, so
	// pending entries can be dropped, but never underneath an active move.
	if !s.coordinator.InFlight() {
		s.overrides.Clear()
	}

	days := schedule.Days(matches, s.loc)
	if day == "" && len(days) > 0 {
		day = days[0]
	}

	idx := s.indexes.Build(day, matches, s.revision.Load(), s.overrides)

	view := &TimetableView{
		Day:       day,
		Days:      days,
		Tables:    dereferenceTables(tables),
		TimeSlots: idx.TimeSlots,
		Grid:      idx.Grid,
	}
	return view, nil
}

func (s *scheduleService) MoveMatch(ctx context.Context, tournamentID int, params MoveParams) ([]schedule.Edit, error) {
	match, err := s.matchRepo.GetByID(ctx, params.MatchID)
	if err != nil {
		return nil, err
	}
	if match.TournamentID != tournamentID {
		return nil, fmt.Errorf("%w: match %d", ErrMatchTournamentMismatch, params.MatchID)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %w", ErrTimetableListFailed, tournamentID, err)
	}

	day := params.Day
	if day == "" && match.Scheduled() {
		day = schedule.DayOf(*match.StartTime, s.loc)
	}

	req := schedule.MoveRequest{
		Match:       match,
		Day:         day,
		TargetTable: params.TableID,
		TargetSlot:  schedule.NormalizeTimeInput(params.TimeSlot),
	}
	edits, err := s.coordinator.Move(ctx, tournamentID, req, matches)
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return edits, nil
	}

	s.revision.Add(1)
	s.broadcast(tournamentID, schedule.Event{Type: schedule.EventScheduleUpdated, Payload: edits})
	return edits, nil
}

func (s *scheduleService) ShiftSlot(ctx context.Context, tournamentID int, params SlotShiftParams) (*schedule.SlotShift, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %w", ErrTimetableListFailed, tournamentID, err)
	}

	idx := schedule.BuildIndex(params.Day, matches, s.overrides, s.loc)
	shift, err := schedule.PlanSlotShift(params.Day, idx.TimeSlots, params.SlotIndex, params.Time, s.loc)
	if err != nil {
		return nil, err
	}
	if shift.Before.Equal(shift.After) {
		return &shift, nil
	}

	moved, err := s.matchRepo.ShiftSlotTimes(ctx, s.db, tournamentID, shift.Before.UTC(), shift.After.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: slot %d on %s: %w", schedule.ErrMutationFailed, params.SlotIndex, params.Day, err)
	}

	s.logger.Info("slot column retimed",
		slog.Int("tournament_id", tournamentID),
		slog.String("day", params.Day),
		slog.Time("before", shift.Before),
		slog.Time("after", shift.After),
		slog.Int64("matches_moved", moved),
	)

	s.revision.Add(1)
	s.broadcast(tournamentID, schedule.Event{Type: schedule.EventSlotShifted, Payload: shift})
	return &shift, nil
}

func (s *scheduleService) PublishTimetable(ctx context.Context, tournamentID int, day string) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrPublishUnavailable
	}

	view, err := s.Timetable(ctx, tournamentID, day)
	if err != nil {
		return nil, err
	}

	body, err := renderTimetableCSV(view)
	if err != nil {
		return nil, fmt.Errorf("failed to render timetable for tournament %d: %w", tournamentID, err)
	}

	key := fmt.Sprintf("timetables/%d/%s.csv", tournamentID, view.Day)
	result, err := s.uploader.Upload(ctx, key, "text/csv", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to publish timetable for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("timetable published",
		slog.Int("tournament_id", tournamentID),
		slog.String("day", view.Day),
		slog.String("key", result.Key),
	)
	return result, nil
}

func (s *scheduleService) ListTables(ctx context.Context, tournamentID int) ([]*models.Table, error) {
	tables, err := s.tableRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables for tournament %d: %w", tournamentID, err)
	}
	if tables == nil {
		return []*models.Table{}, nil
	}
	return tables, nil
}

func (s *scheduleService) broadcast(tournamentID int, event schedule.Event) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(roomID(tournamentID), event)
}

func roomID(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}

// txMutator applies an edit set inside one database transaction so a swap
// commits or rolls back as a unit.
type txMutator struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
}

func (m *txMutator) ApplyEdits(ctx context.Context, tournamentID int, edits []schedule.Edit) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range edits {
		var tableID *string
		if e.TableID != "" {
			t := e.TableID
			tableID = &t
		}
		if err := m.matchRepo.UpdateSchedule(ctx, tx, e.MatchID, tableID, e.Time.UTC()); err != nil {
			return fmt.Errorf("failed to update schedule of match %d: %w", e.MatchID, err)
		}
	}
	return tx.Commit()
}

func renderTimetableCSV(view *TimetableView) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Time"}
	for _, t := range view.Tables {
		header = append(header, t.Name)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, slot := range view.TimeSlots {
		row := []string{slot}
		for _, t := range view.Tables {
			row = append(row, cellText(view.Grid[schedule.CellKey(t.Label, slot)]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellText(m *models.Match) string {
	if m == nil {
		return ""
	}
	if m.BracketLabel != nil && *m.BracketLabel != "" {
		return fmt.Sprintf("#%d %s", m.ID, *m.BracketLabel)
	}
	return fmt.Sprintf("#%d", m.ID)
}

func dereferenceTables(slice []*models.Table) []models.Table {
	if slice == nil {
		return []models.Table{}
	}
	result := make([]models.Table, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}
