// Package detail provides the fighter detail sources the overlay fetches
// from.
package detail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

// ErrNotFound is returned when the source has no record for an id.
var ErrNotFound = errors.New("fighter not found")

// maxBody caps detail responses.
const maxBody = 1 << 20

// HTTPFetcher loads details from GET {BaseURL}/fighters/{id}.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher returns a fetcher with a client timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// FetchDetail implements view.DetailFetcher.
func (f *HTTPFetcher) FetchDetail(ctx context.Context, id string) (*graph.FighterDetail, error) {
	endpoint := strings.TrimRight(f.BaseURL, "/") + "/fighters/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build detail request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detail for %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("detail for %s: %w", id, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("detail for %s: unexpected status %s", id, resp.Status)
	}

	var d graph.FighterDetail
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode detail for %s: %w", id, err)
	}
	return &d, nil
}

// StaticFetcher serves details from memory.
type StaticFetcher struct {
	Details map[string]*graph.FighterDetail

	// Delay simulates network latency; the context still cancels it.
	Delay time.Duration
}

// LoadStatic reads a JSON object of id -> detail.
func LoadStatic(path string) (*StaticFetcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open details: %w", err)
	}
	defer f.Close()

	var details map[string]*graph.FighterDetail
	if err := json.NewDecoder(f).Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to decode details %s: %w", path, err)
	}
	return &StaticFetcher{Details: details}, nil
}

// FetchDetail implements view.DetailFetcher.
func (s *StaticFetcher) FetchDetail(ctx context.Context, id string) (*graph.FighterDetail, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := s.Details[id]
	if !ok || d == nil {
		return nil, fmt.Errorf("detail for %s: %w", id, ErrNotFound)
	}
	cp := *d
	return &cp, nil
}
