package services

import "errors"

// Ошибки сервисного слоя, мапятся на HTTP в handlers.
var (
	ErrTimetableListFailed = errors.New("failed to load timetable")

	ErrMatchTournamentMismatch = errors.New("match does not belong to this tournament")

	ErrPublishUnavailable = errors.New("timetable publishing is not configured")
)
