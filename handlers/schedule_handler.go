package handlers

import (
	"errors"
	"net/http"

	"github.com/matchdesk/tournament-portal/services"
)

type TimetableHandler struct {
	scheduleService services.ScheduleService
}

func NewTimetableHandler(scheduleService services.ScheduleService) *TimetableHandler {
	return &TimetableHandler{scheduleService: scheduleService}
}

// GetTimetableHandler returns the grid for one tournament day. Without a
// ?day= parameter the first tournament day is used.
func (h *TimetableHandler) GetTimetableHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.Timetable(r.Context(), tournamentID, r.URL.Query().Get("day"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"timetable": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MoveMatchHandler runs one reschedule transaction. An empty edit set in the
// response means the drop was a no-op.
func (h *TimetableHandler) MoveMatchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MatchID  int    `json:"match_id"`
		Day      string `json:"day"`
		TableID  string `json:"table_id"`
		TimeSlot string `json:"time_slot"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MatchID < 1 {
		badRequestResponse(w, r, errors.New("match_id is required"))
		return
	}
	if input.TableID == "" || input.TimeSlot == "" {
		badRequestResponse(w, r, errors.New("table_id and time_slot are required"))
		return
	}

	edits, err := h.scheduleService.MoveMatch(r.Context(), tournamentID, services.MoveParams{
		MatchID:  input.MatchID,
		Day:      input.Day,
		TableID:  input.TableID,
		TimeSlot: input.TimeSlot,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"edits": edits}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ShiftSlotHandler retimes one slot column of a day.
func (h *TimetableHandler) ShiftSlotHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Day       string `json:"day"`
		SlotIndex *int   `json:"slot_index"`
		Time      string `json:"time"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Day == "" || input.SlotIndex == nil || input.Time == "" {
		badRequestResponse(w, r, errors.New("day, slot_index and time are required"))
		return
	}

	shift, err := h.scheduleService.ShiftSlot(r.Context(), tournamentID, services.SlotShiftParams{
		Day:       input.Day,
		SlotIndex: *input.SlotIndex,
		Time:      input.Time,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slot_shift": shift}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PublishTimetableHandler renders the day grid to CSV and uploads it to
// object storage.
func (h *TimetableHandler) PublishTimetableHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.scheduleService.PublishTimetable(r.Context(), tournamentID, r.URL.Query().Get("day"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TimetableHandler) ListTablesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tables, err := h.scheduleService.ListTables(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tables": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
