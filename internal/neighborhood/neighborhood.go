// Package neighborhood asks a suggestion service which Swarm neighborhood
// a new node should join.
package neighborhood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ruche-hive/ruche/internal/logging"
)

// DefaultURL is the public suggestion endpoint.
const DefaultURL = "https://api.swarmscan.io/v1/network/neighborhoods/suggestion"

// EnvURL overrides the configured endpoint.
const EnvURL = "NEIGHBORHOOD_API_URL"

var (
	ErrMissingField = errors.New("missing 'neighborhood' field")
	ErrInvalidField = errors.New("invalid 'neighborhood' field")
)

// Lookup returns a neighborhood for a new node.
type Lookup interface {
	Suggest(ctx context.Context) (string, error)
}

// ResolveURL picks the endpoint: the environment wins over configuration,
// which wins over DefaultURL.
func ResolveURL(configured string) string {
	if v := os.Getenv(EnvURL); v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	return DefaultURL
}

// HTTPLookup queries the suggestion endpoint with a single GET.
type HTTPLookup struct {
	URL    string
	Client *http.Client
}

// NewHTTPLookup creates a lookup for url with a bounded client timeout.
func NewHTTPLookup(url string) *HTTPLookup {
	return &HTTPLookup{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *HTTPLookup) Suggest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logging.Debug("requesting neighborhood suggestion", "url", l.URL)
	resp, err := l.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("neighborhood service returned %s", resp.Status)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode neighborhood response: %w", err)
	}

	raw, ok := body["neighborhood"]
	if !ok {
		return "", ErrMissingField
	}
	hood, ok := raw.(string)
	if !ok {
		return "", ErrInvalidField
	}
	return hood, nil
}

// Static returns fixed answers. Each call pops the next entry of Values
// and repeats the last one once exhausted. Err, when set, is returned
// instead.
type Static struct {
	mu     sync.Mutex
	Values []string
	Err    error
	Calls  int
}

func (s *Static) Suggest(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Values) == 0 {
		return "", nil
	}
	v := s.Values[0]
	if len(s.Values) > 1 {
		s.Values = s.Values[1:]
	}
	return v, nil
}

var (
	_ Lookup = (*HTTPLookup)(nil)
	_ Lookup = (*Static)(nil)
)
