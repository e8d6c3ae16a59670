package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldesk/haldesk/pkg/actions/webhook"
	"github.com/haldesk/haldesk/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func executionContext() models.ExecutionContext {
	return models.ExecutionContext{
		Ticket:  &models.Ticket{ID: "ticket-1", Subject: "Printer jam", Priority: 3},
		User:    &models.User{ID: "agent-1", Name: "Greta", Role: "agent"},
		Context: map[string]any{"channel": "phone"},
		Effects: &models.EffectLog{},
	}
}

func TestWebhookDeliversPayload(t *testing.T) {
	t.Parallel()

	var (
		received    map[string]any
		contentType string
		customValue string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		customValue = r.Header.Get("X-Haldesk-Token")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	action, err := webhook.NewAction(map[string]any{
		"url":     server.URL,
		"headers": map[string]any{"X-Haldesk-Token": "secret"},
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "secret", customValue)

	ticket, ok := received["ticket"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ticket-1", ticket["id"])
	assert.Equal(t, "Printer jam", ticket["subject"])

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, data["status_code"])
	assert.Equal(t, `{"ok":true}`, data["body"])
}

func TestWebhookServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	action, err := webhook.NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	// A non-2xx response is a failed result, not a pipeline error.
	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestWebhookNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	action, err := webhook.NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), executionContext(), testLogger())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestWebhookRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := webhook.NewAction(map[string]any{})
	assert.ErrorIs(t, err, webhook.ErrURLRequired)
}
