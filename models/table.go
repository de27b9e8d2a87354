package models

// Table is a physical venue table. Label is the short column header shown on
// the timetable grid ("1", "2", ...), Name the full display name.
type Table struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Name         string `json:"name" db:"name"`
	Label        string `json:"label" db:"label"`
}
