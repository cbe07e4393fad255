package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/hearth/internal/calendar"
	"github.com/dukerupert/hearth/internal/feed"
	"github.com/dukerupert/hearth/internal/handler"
	"github.com/dukerupert/hearth/internal/middleware"
	"github.com/dukerupert/hearth/internal/store"
	ws "github.com/dukerupert/hearth/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	sourceH       *handler.SourceHandler
	eventsH       *handler.EventsHandler
	pinH          *handler.PINHandler
	settingsStore *store.SettingsStore
	calendarSvc   *calendar.Service
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, location *time.Location, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	sourceStore := store.NewSourceStore(db)
	settingsStore := store.NewSettingsStore(db)

	fetcher := feed.NewHTTPFetcher()
	calendarSvc := calendar.NewService(sourceStore, fetcher, hub, location, logger.With("component", "calendar"))

	return &Server{
		db:            db,
		hub:           hub,
		sourceH:       handler.NewSourceHandler(sourceStore, calendarSvc, hub, logger.With("component", "source")),
		eventsH:       handler.NewEventsHandler(calendarSvc, logger.With("component", "events")),
		pinH:          handler.NewPINHandler(settingsStore, logger.With("component", "pin")),
		settingsStore: settingsStore,
		calendarSvc:   calendarSvc,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// CalendarService returns the calendar service for scheduled refreshes.
func (s *Server) CalendarService() *calendar.Service {
	return s.calendarSvc
}

// SettingsStore returns the settings store for startup PIN seeding.
func (s *Server) SettingsStore() *store.SettingsStore {
	return s.settingsStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Read routes are open on the household LAN
	mux.HandleFunc("GET /api/sources", s.sourceH.List)
	mux.HandleFunc("GET /api/events", s.eventsH.List)
	mux.HandleFunc("POST /api/refresh", s.eventsH.Refresh)

	// Registry mutations sit behind the panel PIN when one is configured
	pinGate := middleware.RequirePIN(s.settingsStore)
	mux.Handle("POST /api/sources", pinGate(http.HandlerFunc(s.sourceH.Create)))
	mux.Handle("PUT /api/sources/{id}", pinGate(http.HandlerFunc(s.sourceH.Update)))
	mux.Handle("DELETE /api/sources/{id}", pinGate(http.HandlerFunc(s.sourceH.Delete)))

	// PIN management; verify is rate-limited to slow guessing
	mux.Handle("POST /api/pin", pinGate(http.HandlerFunc(s.pinH.Set)))
	mux.HandleFunc("POST /api/pin/verify", s.rateLimitedHandler(s.pinH.Verify))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
