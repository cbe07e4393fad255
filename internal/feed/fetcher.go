package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	userAgent    = "Hearth-Calendar/1.0"
	fetchTimeout = 15 * time.Second
)

// Fetcher retrieves the raw iCal text behind a feed URL. The calendar
// service depends on this interface, not on HTTP, so tests and future
// transports can substitute their own implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches feeds over HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read feed body: %w", err)
	}

	text := string(body)
	if err := validateFeed(text); err != nil {
		return "", err
	}
	return text, nil
}

// validateFeed rejects responses that are clearly not iCalendar data, most
// commonly an HTML login page from a feed URL that requires authentication.
func validateFeed(body string) error {
	trimmed := strings.TrimSpace(body)
	upper := strings.ToUpper(trimmed)

	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("feed returned HTML, not iCalendar data")
	}
	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		return fmt.Errorf("feed is not iCalendar data (missing BEGIN:VCALENDAR)")
	}
	return nil
}
