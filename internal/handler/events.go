package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/hearth/internal/calendar"
	"github.com/dukerupert/hearth/internal/model"
)

type EventsHandler struct {
	calendarSvc *calendar.Service
	logger      *slog.Logger
}

func NewEventsHandler(svc *calendar.Service, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{calendarSvc: svc, logger: logger}
}

// List serves the current snapshot. Without parameters it returns the whole
// aggregate plus per-source feed errors; with ?day=YYYY-MM-DD it returns
// that local calendar day's events, and ?upcoming=true additionally drops
// events that already started.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	dayStr := r.URL.Query().Get("day")
	if dayStr == "" {
		writeJSON(w, http.StatusOK, h.snapshotResponse())
		return
	}

	day, err := time.ParseInLocation("2006-01-02", dayStr, h.calendarSvc.Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day must be YYYY-MM-DD format"})
		return
	}

	upcoming := r.URL.Query().Get("upcoming") == "true"
	events := h.calendarSvc.EventsForDay(day, upcoming, time.Now())
	if events == nil {
		events = []model.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Refresh forces a full fetch cycle and returns the fresh snapshot.
func (h *EventsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.calendarSvc.Refresh(r.Context()); err != nil {
		h.logger.Error("manual refresh", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, h.snapshotResponse())
}

func (h *EventsHandler) snapshotResponse() calendar.Snapshot {
	snap := h.calendarSvc.Snapshot()
	if snap.Events == nil {
		snap.Events = []model.CalendarEvent{}
	}
	if snap.Errors == nil {
		snap.Errors = []model.FeedError{}
	}
	return snap
}
