package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable means the transcript could not be fetched or its body was
// a provider error payload. Callers treat it as "no transcript" and degrade
// the dependent feature rather than surfacing a failure.
var ErrUnavailable = errors.New("transcript not available")

// Storage providers answer expired or malformed links with 200s whose body
// is an XML error document, so a status check alone is not enough.
var errorMarkers = []string{"invalidkey", "unknown key", "<error>"}

// Fetcher retrieves transcript files by URL.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a 30s
// timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch returns the transcript body for url, or ErrUnavailable when the
// response is non-2xx or recognizably an error payload.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create transcript request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ErrUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript body: %w", err)
	}

	text := string(body)
	if !Usable(text) {
		return "", ErrUnavailable
	}
	return text, nil
}

// Usable reports whether a transcript body is worth parsing: non-empty and
// free of known provider error markers, case-insensitive.
func Usable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range errorMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
