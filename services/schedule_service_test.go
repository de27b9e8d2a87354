package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/matchdesk/tournament-portal/models"
	"github.com/matchdesk/tournament-portal/repositories"
	"github.com/matchdesk/tournament-portal/schedule"
	"github.com/matchdesk/tournament-portal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int { return &v }

func sp(v string) *string { return &v }

func at(day, slot string) *time.Time {
	t, err := schedule.CombineDayAndSlot(day, slot, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type shiftCall struct {
	tournamentID  int
	before, after time.Time
}

type fakeMatchRepo struct {
	matches    []*models.Match
	shiftCalls []shiftCall
	shiftMoved int64
	shiftErr   error
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateSchedule(_ context.Context, _ repositories.SQLExecutor, _ int, _ *string, _ time.Time) error {
	return nil
}

func (r *fakeMatchRepo) ShiftSlotTimes(_ context.Context, _ repositories.SQLExecutor, tournamentID int, before, after time.Time) (int64, error) {
	r.shiftCalls = append(r.shiftCalls, shiftCall{tournamentID: tournamentID, before: before, after: after})
	return r.shiftMoved, r.shiftErr
}

type fakeTableRepo struct {
	tables []*models.Table
}

func (r *fakeTableRepo) GetByID(_ context.Context, id int) (*models.Table, error) {
	for _, tbl := range r.tables {
		if tbl.ID == id {
			return tbl, nil
		}
	}
	return nil, repositories.ErrTableNotFound
}

func (r *fakeTableRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Table, error) {
	var out []*models.Table
	for _, tbl := range r.tables {
		if tbl.TournamentID == tournamentID {
			out = append(out, tbl)
		}
	}
	return out, nil
}

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.key, u.contentType, u.body = key, contentType, body
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, _ string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

type fakeServiceMutator struct {
	err   error
	calls [][]schedule.Edit
}

func (f *fakeServiceMutator) ApplyEdits(_ context.Context, _ int, edits []schedule.Edit) error {
	f.calls = append(f.calls, edits)
	return f.err
}

func newTestService(matchRepo *fakeMatchRepo, tableRepo *fakeTableRepo, uploader storage.FileUploader) (*scheduleService, *fakeServiceMutator) {
	svc := NewScheduleService(nil, matchRepo, tableRepo, uploader, nil, time.UTC, discardLogger()).(*scheduleService)
	fm := &fakeServiceMutator{}
	svc.mutator = fm
	svc.coordinator = schedule.NewCoordinator(fm, svc.overrides, svc.loc, svc.logger)
	return svc, fm
}

const day1 = "2025-07-12"
const day2 = "2025-07-13"

func fixtureMatches() []*models.Match {
	return []*models.Match{
		{ID: 1, TournamentID: 1, DivisionID: 1, Kind: models.KindRoundRobin, TableID: sp("T1"), StartTime: at(day1, "10:00"), ParticipantAID: ip(100), ParticipantBID: ip(101)},
		{ID: 2, TournamentID: 1, DivisionID: 1, Kind: models.KindRoundRobin, TableID: sp("T2"), StartTime: at(day1, "11:00"), ParticipantAID: ip(102), ParticipantBID: ip(103)},
		{ID: 3, TournamentID: 1, DivisionID: 1, Kind: models.KindBracket, TableID: sp("T1"), StartTime: at(day2, "10:00"), BracketLabel: sp("Final")},
		{ID: 4, TournamentID: 2, DivisionID: 2, Kind: models.KindRoundRobin, TableID: sp("X1"), StartTime: at(day1, "10:00")},
	}
}

func fixtureTables() []*models.Table {
	return []*models.Table{
		{ID: 1, TournamentID: 1, Name: "Table One", Label: "T1"},
		{ID: 2, TournamentID: 1, Name: "Table Two", Label: "T2"},
	}
}

func TestTimetableDefaultsToFirstDay(t *testing.T) {
	svc, _ := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	view, err := svc.Timetable(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, day1, view.Day)
	assert.Equal(t, []string{day1, day2}, view.Days)
	assert.Equal(t, []string{"10:00", "11:00"}, view.TimeSlots)
	require.Len(t, view.Tables, 2)

	cell := view.Grid[schedule.CellKey("T1", "10:00")]
	require.NotNil(t, cell)
	assert.Equal(t, 1, cell.ID)

	// Matches of other tournaments never leak in.
	for _, m := range view.Grid {
		assert.Equal(t, 1, m.TournamentID)
	}
}

func TestTimetableClearsOverridesWhenIdle(t *testing.T) {
	svc, _ := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	svc.overrides.Apply([]schedule.Edit{{MatchID: 1, TableID: "T2", Slot: "15:00"}})

	_, err := svc.Timetable(context.Background(), 1, day1)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.overrides.Len())
}

func TestMoveMatch(t *testing.T) {
	svc, mut := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	// Free-text slot input is normalized before validation.
	edits, err := svc.MoveMatch(context.Background(), 1, MoveParams{MatchID: 1, TableID: "T2", TimeSlot: "1200"})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "12:00", edits[0].Slot)
	assert.Equal(t, *at(day1, "12:00"), edits[0].Time)

	require.Len(t, mut.calls, 1)
	assert.EqualValues(t, 1, svc.revision.Load())
}

func TestMoveMatchTournamentMismatch(t *testing.T) {
	svc, mut := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	_, err := svc.MoveMatch(context.Background(), 1, MoveParams{MatchID: 4, TableID: "T1", TimeSlot: "12:00"})
	require.ErrorIs(t, err, ErrMatchTournamentMismatch)
	assert.Empty(t, mut.calls)
}

func TestMoveMatchNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	_, err := svc.MoveMatch(context.Background(), 1, MoveParams{MatchID: 99, TableID: "T1", TimeSlot: "12:00"})
	require.ErrorIs(t, err, repositories.ErrMatchNotFound)
}

func TestMoveMatchNoOpSkipsRevisionBump(t *testing.T) {
	svc, mut := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	edits, err := svc.MoveMatch(context.Background(), 1, MoveParams{MatchID: 1, TableID: "T1", TimeSlot: "10:00"})
	require.NoError(t, err)
	assert.Empty(t, edits)
	assert.Empty(t, mut.calls)
	assert.EqualValues(t, 0, svc.revision.Load())
}

func TestShiftSlot(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: fixtureMatches(), shiftMoved: 2}
	svc, _ := newTestService(matchRepo, &fakeTableRepo{tables: fixtureTables()}, nil)

	shift, err := svc.ShiftSlot(context.Background(), 1, SlotShiftParams{Day: day1, SlotIndex: 1, Time: "11:30"})
	require.NoError(t, err)
	assert.Equal(t, *at(day1, "11:00"), shift.Before)
	assert.Equal(t, *at(day1, "11:30"), shift.After)

	require.Len(t, matchRepo.shiftCalls, 1)
	call := matchRepo.shiftCalls[0]
	assert.Equal(t, 1, call.tournamentID)
	assert.Equal(t, at(day1, "11:00").UTC(), call.before)
	assert.Equal(t, at(day1, "11:30").UTC(), call.after)
	assert.EqualValues(t, 1, svc.revision.Load())
}

func TestShiftSlotNoOp(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: fixtureMatches()}
	svc, _ := newTestService(matchRepo, &fakeTableRepo{tables: fixtureTables()}, nil)

	shift, err := svc.ShiftSlot(context.Background(), 1, SlotShiftParams{Day: day1, SlotIndex: 1, Time: "11:00"})
	require.NoError(t, err)
	assert.True(t, shift.Before.Equal(shift.After))
	assert.Empty(t, matchRepo.shiftCalls)
	assert.EqualValues(t, 0, svc.revision.Load())
}

func TestShiftSlotRejectsOrderViolation(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: fixtureMatches()}
	svc, _ := newTestService(matchRepo, &fakeTableRepo{tables: fixtureTables()}, nil)

	_, err := svc.ShiftSlot(context.Background(), 1, SlotShiftParams{Day: day1, SlotIndex: 1, Time: "09:00"})
	require.ErrorIs(t, err, schedule.ErrSlotOrder)
	assert.Empty(t, matchRepo.shiftCalls)
}

func TestPublishTimetableUnavailable(t *testing.T) {
	svc, _ := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, nil)

	_, err := svc.PublishTimetable(context.Background(), 1, day1)
	require.ErrorIs(t, err, ErrPublishUnavailable)
}

func TestPublishTimetable(t *testing.T) {
	uploader := &fakeUploader{}
	svc, _ := newTestService(&fakeMatchRepo{matches: fixtureMatches()}, &fakeTableRepo{tables: fixtureTables()}, uploader)

	result, err := svc.PublishTimetable(context.Background(), 1, day2)
	require.NoError(t, err)

	assert.Equal(t, "timetables/1/2025-07-13.csv", result.Key)
	assert.Equal(t, "text/csv", uploader.contentType)

	assert.True(t, bytes.HasPrefix(uploader.body, []byte("Time,Table One,Table Two\n")))
	assert.Contains(t, string(uploader.body), "#3 Final")
}

func TestListTables(t *testing.T) {
	svc, _ := newTestService(&fakeMatchRepo{}, &fakeTableRepo{tables: fixtureTables()}, nil)

	tables, err := svc.ListTables(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, tables, 2)

	tables, err = svc.ListTables(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}
