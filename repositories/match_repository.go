package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/matchdesk/tournament-portal/models"
)

// SQLExecutor lets repository methods run against either the pool or an open
// transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchTableInvalid = errors.New("match table assignment conflict or invalid")
)

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateSchedule(ctx context.Context, exec SQLExecutor, matchID int, tableID *string, startTime time.Time) error
	ShiftSlotTimes(ctx context.Context, exec SQLExecutor, tournamentID int, before, after time.Time) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, division_id, kind, start_time, table_id,
	participant_a_id, participant_b_id, bracket_label,
	next_winner_match_id, next_loser_match_id`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.DivisionID,
		&match.Kind,
		&match.StartTime,
		&match.TableID,
		&match.ParticipantAID,
		&match.ParticipantBID,
		&match.BracketLabel,
		&match.NextWinnerMatchID,
		&match.NextLoserMatchID,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY start_time ASC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, matchID int, tableID *string, startTime time.Time) error {
	query := `UPDATE matches SET table_id = $1, start_time = $2 WHERE id = $3`

	result, err := exec.ExecContext(ctx, query, tableID, startTime, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ShiftSlotTimes(ctx context.Context, exec SQLExecutor, tournamentID int, before, after time.Time) (int64, error) {
	query := `UPDATE matches SET start_time = $1 WHERE tournament_id = $2 AND start_time = $3`

	result, err := exec.ExecContext(ctx, query, after, tournamentID, before)
	if err != nil {
		return 0, fmt.Errorf("ShiftSlotTimes: failed to execute query for tournament %d: %w", tournamentID, err)
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return moved, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_table_id_fkey":
			return ErrMatchTableInvalid
		}
	}
	return err
}
