package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves raw bytes for a URL. It is the seam the transcoder and
// the merger use for all network access.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// DefaultRelays are the cross-origin relay endpoints tried in order.
// Catalogue images live on a third-party origin, so the origin itself is
// never fetched directly; every attempt goes through a relay.
var DefaultRelays = []string{
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
	"https://api.codetabs.com/v1/proxy?quest=",
}

// RelayFetcher walks an ordered relay list, giving each attempt its own
// timeout. The first relay that returns a 2xx body wins; if every relay
// fails the last error is returned and the caller degrades gracefully.
type RelayFetcher struct {
	Relays  []string
	Timeout time.Duration
	Client  *http.Client
}

// NewRelayFetcher returns a fetcher over DefaultRelays with an 8s
// per-attempt timeout.
func NewRelayFetcher() *RelayFetcher {
	return &RelayFetcher{
		Relays:  DefaultRelays,
		Timeout: 8 * time.Second,
		Client:  &http.Client{},
	}
}

// Fetch tries each relay in order and returns the first successful body.
func (f *RelayFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if len(f.Relays) == 0 {
		return nil, fmt.Errorf("relay fetch: no relays configured")
	}

	var lastErr error
	for _, relay := range f.Relays {
		body, err := f.fetchOnce(ctx, relay+url.QueryEscape(rawURL))
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Printf("relay fetch: %s failed for %s: %v", relayHost(relay), rawURL, err)
	}
	return nil, fmt.Errorf("relay fetch: all relays failed: %w", lastErr)
}

// fetchOnce performs a single GET bounded by the per-attempt timeout.
func (f *RelayFetcher) fetchOnce(ctx context.Context, fullURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func relayHost(relay string) string {
	u, err := url.Parse(relay)
	if err != nil {
		return relay
	}
	return u.Host
}

// placeholderTokens mark catalogue entries that carry no real image.
var placeholderTokens = []string{"placeholder", "no-image", "noimage"}

// IsPlaceholderURL reports whether a source URL should be skipped without
// any network activity.
func IsPlaceholderURL(rawURL string) bool {
	s := strings.TrimSpace(strings.ToLower(rawURL))
	if s == "" {
		return true
	}
	for _, tok := range placeholderTokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
