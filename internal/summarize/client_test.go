package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var in Input
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "standup notes", in.Text)

		json.NewEncoder(w).Encode(Minutes{
			Title:     "Daily standup",
			Attendees: []string{"Ada", "Grace"},
			Summary:   "Short sync.",
			KeyPoints: []string{"release on track"},
			ActionItems: []ActionItem{
				{Task: "ship build", Owner: "Ada"},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "key-123")
	minutes, err := client.Summarize(context.Background(), Input{Text: "standup notes"})
	require.NoError(t, err)

	assert.Equal(t, "Daily standup", minutes.Title)
	assert.Len(t, minutes.Attendees, 2)
	assert.Equal(t, "Ada", minutes.ActionItems[0].Owner)
}

func TestSummarizeEmptyInput(t *testing.T) {
	client := NewHTTPClient("http://localhost:0", "")
	_, err := client.Summarize(context.Background(), Input{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSummarizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	_, err := client.Summarize(context.Background(), Input{Text: "notes"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestIsAudio(t *testing.T) {
	assert.True(t, Input{MimeType: "audio/mpeg", Base64Data: "Zm9v"}.IsAudio())
	assert.False(t, Input{MimeType: "application/pdf", Base64Data: "Zm9v"}.IsAudio())
	assert.False(t, Input{Text: "notes"}.IsAudio())
}
