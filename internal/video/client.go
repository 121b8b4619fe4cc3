// Package video is a server-side client for the video provider's REST API.
// The provider owns calls, recordings and transcription blobs; this client
// only reads them and updates per-call custom data.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"meetscribe/internal/auth"
)

// Call is the provider's call object, reduced to the fields we consume.
type Call struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	StartsAt  *time.Time             `json:"starts_at,omitempty"`
	EndedAt   *time.Time             `json:"ended_at,omitempty"`
	CreatedBy string                 `json:"created_by_user_id,omitempty"`
	Custom    map[string]interface{} `json:"custom,omitempty"`
}

// Recording is a stored media artifact of a call session.
type Recording struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SessionID string `json:"session_id"`
}

// Transcription is a provider-generated transcript file for a call session.
// Older provider responses omit session_id; see CallsWithArtifacts.
type Transcription struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SessionID string `json:"session_id,omitempty"`
}

// Client talks to the video provider with an API key plus a server JWT
// signed with the API secret.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

// NewClient creates a provider client. A nil httpClient gets a default
// with a 30s timeout.
func NewClient(apiKey, apiSecret, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		http:      httpClient,
	}
}

// Configured reports whether provider credentials were supplied.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.apiSecret != ""
}

// GetCall fetches one call by type and id.
func (c *Client) GetCall(ctx context.Context, callType, callID string) (*Call, error) {
	var resp struct {
		Call Call `json:"call"`
	}
	path := fmt.Sprintf("/video/call/%s/%s", url.PathEscape(callType), url.PathEscape(callID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Call, nil
}

// CreateCall get-or-creates a call with the given id. startsAt and custom
// data are only applied when the call is new.
func (c *Client) CreateCall(ctx context.Context, callType, callID, createdBy string, startsAt *time.Time, custom map[string]interface{}) (*Call, error) {
	data := map[string]interface{}{
		"created_by_id": createdBy,
	}
	if startsAt != nil {
		data["starts_at"] = startsAt.Format(time.RFC3339)
	}
	if len(custom) > 0 {
		data["custom"] = custom
	}

	var resp struct {
		Call Call `json:"call"`
	}
	path := fmt.Sprintf("/video/call/%s/%s", url.PathEscape(callType), url.PathEscape(callID))
	if err := c.do(ctx, http.MethodPost, path, map[string]interface{}{"data": data}, &resp); err != nil {
		return nil, err
	}
	return &resp.Call, nil
}

// UpdateCallCustom replaces the call's custom data block.
func (c *Client) UpdateCallCustom(ctx context.Context, callType, callID string, custom map[string]interface{}) error {
	path := fmt.Sprintf("/video/call/%s/%s", url.PathEscape(callType), url.PathEscape(callID))
	body := map[string]interface{}{"custom": custom}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// QueryCalls lists calls the user created or was a member of, newest first.
func (c *Client) QueryCalls(ctx context.Context, userID string, limit int) ([]Call, error) {
	if limit <= 0 {
		limit = 25
	}
	body := map[string]interface{}{
		"limit": limit,
		"filter_conditions": map[string]interface{}{
			"$or": []map[string]interface{}{
				{"created_by_user_id": userID},
				{"members": map[string]interface{}{"$in": []string{userID}}},
			},
		},
	}
	var resp struct {
		Calls []struct {
			Call Call `json:"call"`
		} `json:"calls"`
	}
	if err := c.do(ctx, http.MethodPost, "/video/calls", body, &resp); err != nil {
		return nil, err
	}
	calls := make([]Call, 0, len(resp.Calls))
	for _, entry := range resp.Calls {
		calls = append(calls, entry.Call)
	}
	return calls, nil
}

// QueryRecordings lists the stored recordings of a call.
func (c *Client) QueryRecordings(ctx context.Context, callType, callID string) ([]Recording, error) {
	var resp struct {
		Recordings []Recording `json:"recordings"`
	}
	path := fmt.Sprintf("/video/call/%s/%s/recordings", url.PathEscape(callType), url.PathEscape(callID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recordings, nil
}

// QueryTranscriptions lists the transcription files of a call.
func (c *Client) QueryTranscriptions(ctx context.Context, callType, callID string) ([]Transcription, error) {
	var resp struct {
		Transcriptions []Transcription `json:"transcriptions"`
	}
	path := fmt.Sprintf("/video/call/%s/%s/transcriptions", url.PathEscape(callType), url.PathEscape(callID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transcriptions, nil
}

// do performs one provider request, authenticating with the api_key query
// parameter and a short-lived server JWT.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := auth.SignToken("server", c.apiSecret, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to sign provider token: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode provider request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	u := c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("stream-auth-type", "jwt")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
