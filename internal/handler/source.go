package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/hearth/internal/calendar"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	ws "github.com/dukerupert/hearth/internal/websocket"
)

type SourceHandler struct {
	sourceStore *store.SourceStore
	calendarSvc *calendar.Service
	hub         *ws.Hub
	logger      *slog.Logger
}

func NewSourceHandler(ss *store.SourceStore, svc *calendar.Service, hub *ws.Hub, logger *slog.Logger) *SourceHandler {
	return &SourceHandler{sourceStore: ss, calendarSvc: svc, hub: hub, logger: logger}
}

type sourceRequest struct {
	Name    string `json:"name"`
	FeedURL string `json:"feed_url"`
	Color   string `json:"color"`
}

func (h *SourceHandler) parseAndValidate(r *http.Request, w http.ResponseWriter) (*sourceRequest, bool) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return nil, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return nil, false
	}

	req.FeedURL = strings.TrimSpace(req.FeedURL)
	u, err := url.Parse(req.FeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feed_url must be an http(s) URL"})
		return nil, false
	}

	return &req, true
}

func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sourceStore.List()
	if err != nil {
		h.logger.Error("list sources", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sources"})
		return
	}
	if sources == nil {
		sources = []model.CalendarSource{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	src, err := h.sourceStore.Create(req.Name, req.FeedURL, req.Color)
	if err != nil {
		h.logger.Error("create source", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create source"})
		return
	}

	h.hub.Broadcast(ws.SourceCreated(src.ID))
	h.refreshAsync()
	writeJSON(w, http.StatusCreated, src)
}

func (h *SourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.sourceStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get source"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "source not found"})
		return
	}

	req, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	src, err := h.sourceStore.Update(id, req.Name, req.FeedURL, req.Color)
	if err != nil {
		h.logger.Error("update source", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update source"})
		return
	}

	h.hub.Broadcast(ws.SourceUpdated(id))
	h.refreshAsync()
	writeJSON(w, http.StatusOK, src)
}

func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.sourceStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get source"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "source not found"})
		return
	}

	if err := h.sourceStore.Delete(id); err != nil {
		h.logger.Error("delete source", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete source"})
		return
	}

	h.hub.Broadcast(ws.SourceDeleted(id))
	h.refreshAsync()
	w.WriteHeader(http.StatusNoContent)
}

// refreshAsync rebuilds the calendar snapshot in the background after a
// registry change so the panel reflects edits without waiting for the next
// scheduled cycle.
func (h *SourceHandler) refreshAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.calendarSvc.Refresh(ctx); err != nil {
			h.logger.Error("refresh after source change", "error", err)
		}
	}()
}
