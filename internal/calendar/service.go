package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/hearth/internal/feed"
	"github.com/dukerupert/hearth/internal/ical"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	ws "github.com/dukerupert/hearth/internal/websocket"
)

// Snapshot is the result of one complete refresh cycle: the merged event
// list plus any per-source failures. Snapshots are immutable and replaced
// wholesale — readers never see a half-built cycle.
type Snapshot struct {
	Events      []model.CalendarEvent `json:"events"`
	Errors      []model.FeedError     `json:"errors"`
	RefreshedAt time.Time             `json:"refreshed_at"`
}

// Service owns the fetch → parse → expand → aggregate pipeline and the
// current snapshot.
type Service struct {
	sources  *store.SourceStore
	fetcher  feed.Fetcher
	hub      *ws.Hub
	location *time.Location
	logger   *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

func NewService(sources *store.SourceStore, fetcher feed.Fetcher, hub *ws.Hub, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		sources:  sources,
		fetcher:  fetcher,
		hub:      hub,
		location: location,
		logger:   logger,
	}
}

// Refresh runs one full fetch cycle over a snapshot of the source registry.
// Sources are fetched concurrently; a failing source contributes a FeedError
// and nothing else. The new snapshot is swapped in only once every source
// has reported.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	sources, err := s.sources.List()
	if err != nil {
		return Snapshot{}, err
	}

	type result struct {
		events []model.CalendarEvent
		err    *model.FeedError
	}
	results := make([]result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src model.CalendarSource) {
			defer wg.Done()

			body, err := s.fetcher.Fetch(ctx, src.FeedURL)
			if err != nil {
				s.logger.Warn("feed fetch failed", "source", src.Name, "error", err)
				results[i].err = &model.FeedError{
					SourceID:   src.ID,
					SourceName: src.Name,
					Message:    err.Error(),
				}
				return
			}

			events := ical.ParseFeed(src, body, s.location)
			s.logger.Debug("feed parsed", "source", src.Name, "events", len(events))
			results[i].events = events
		}(i, src)
	}
	wg.Wait()

	perSource := make([][]model.CalendarEvent, 0, len(sources))
	var feedErrors []model.FeedError
	for _, r := range results {
		if r.err != nil {
			feedErrors = append(feedErrors, *r.err)
			continue
		}
		perSource = append(perSource, r.events)
	}

	snap := Snapshot{
		Events:      Aggregate(perSource),
		Errors:      feedErrors,
		RefreshedAt: time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.logger.Info("calendar refreshed",
		"sources", len(sources),
		"events", len(snap.Events),
		"failed_sources", len(feedErrors),
	)

	if s.hub != nil {
		s.hub.Broadcast(ws.CalendarRefreshed(len(snap.Events), len(feedErrors)))
	}

	return snap, nil
}

// Snapshot returns the most recent refresh result.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// EventsForDay returns the snapshot's events for the calendar day containing
// day. With upcomingOnly set, events already started before now are dropped;
// the day filter always applies first.
func (s *Service) EventsForDay(day time.Time, upcomingOnly bool, now time.Time) []model.CalendarEvent {
	snap := s.Snapshot()
	events := FilterByDay(snap.Events, day, s.location)
	if upcomingOnly {
		events = FilterUpcoming(events, now)
	}
	return events
}

// Location exposes the service's display time zone for handlers that parse
// day query parameters.
func (s *Service) Location() *time.Location {
	return s.location
}
