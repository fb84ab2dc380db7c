package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrEmptyInput  = errors.New("summarize: empty input")
	ErrUnavailable = errors.New("summarize: service unavailable")
)

// Input is either plain text or a base64-encoded document/audio payload.
type Input struct {
	Text       string `json:"text,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	Base64Data string `json:"base64_data,omitempty"`
}

func (in Input) Empty() bool {
	return in.Text == "" && in.Base64Data == ""
}

type ActionItem struct {
	Task  string `json:"task"`
	Owner string `json:"owner"`
}

// IsAudio reports whether the payload needs audio transcription, which is a
// plan-gated capability.
func (in Input) IsAudio() bool {
	switch in.MimeType {
	case "audio/mpeg", "audio/mp4", "audio/wav", "audio/webm", "audio/ogg":
		return true
	}
	return false
}

// Minutes is the structured result of one summarization call.
type Minutes struct {
	Title       string       `json:"title"`
	Attendees   []string     `json:"attendees"`
	Summary     string       `json:"summary"`
	KeyPoints   []string     `json:"key_points"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []string     `json:"decisions"`
}

// Client is the summarization collaborator. The engine treats it as an
// opaque, possibly-failing remote call.
type Client interface {
	Summarize(ctx context.Context, in Input) (*Minutes, error)
}

type HTTPClient struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewHTTPClient(url, apiKey string) *HTTPClient {
	return &HTTPClient{
		url:    url,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *HTTPClient) Summarize(ctx context.Context, in Input) (*Minutes, error) {
	if in.Empty() {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, payload)
	}

	var minutes Minutes
	if err := json.NewDecoder(resp.Body).Decode(&minutes); err != nil {
		return nil, fmt.Errorf("summarize: bad response: %w", err)
	}

	return &minutes, nil
}
