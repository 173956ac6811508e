package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackWebhookPostsText(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := NewSlackWebhook(SlackWebhookConfig{})
	err := hook.Chat(context.Background(), server.URL, "promotion requested")
	require.NoError(t, err)
	assert.Equal(t, "promotion requested", got["text"])
}

func TestSlackWebhookEmptyURLNoop(t *testing.T) {
	hook := NewSlackWebhook(SlackWebhookConfig{})
	assert.NoError(t, hook.Chat(context.Background(), "", "ignored"))
}

func TestSlackWebhookErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	hook := NewSlackWebhook(SlackWebhookConfig{})
	err := hook.Chat(context.Background(), server.URL, "text")
	assert.Error(t, err)
}

func TestSlackWebhookTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	hook := NewSlackWebhook(SlackWebhookConfig{Timeout: 50 * time.Millisecond})
	err := hook.Chat(context.Background(), server.URL, "text")
	assert.Error(t, err)
}
