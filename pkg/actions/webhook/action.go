// Package webhook implements the webhook action: it POSTs a JSON snapshot of
// the transition to a configured URL with a bounded timeout.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/haldesk/haldesk/pkg/models"
)

const defaultTimeoutSeconds = 10

// ErrURLRequired is returned when the configuration has no URL.
var ErrURLRequired = errors.New("webhook action requires a url")

// Action POSTs the transition payload to an external endpoint. A network
// failure is reported as a failed action result, never as a pipeline abort.
type Action struct {
	ID      string
	URL     string
	Headers map[string]string
	Timeout time.Duration

	client *http.Client
}

// NewAction creates a webhook action from configuration.
func NewAction(config map[string]any) (*Action, error) {
	actionID, _ := config["id"].(string)

	url, _ := config["url"].(string)
	if url == "" {
		return nil, ErrURLRequired
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := config["timeout_seconds"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	headers := make(map[string]string)

	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for key, value := range headersConfig {
			if str, ok := value.(string); ok {
				headers[key] = str
			}
		}
	}

	return &Action{
		ID:      actionID,
		URL:     url,
		Headers: headers,
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Execute sends the payload and records the HTTP outcome.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("module", "webhook_action", "url", a.URL)

	payload := map[string]any{
		"ticket":    executionCtx.Ticket.Snapshot(),
		"user":      executionCtx.User.Snapshot(),
		"context":   executionCtx.Context,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.ActionResult{Success: false, Message: err.Error()}, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(body))
	if err != nil {
		return models.ActionResult{Success: false, Message: err.Error()}, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range a.Headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "webhook call failed", "error", err)

		return models.ActionResult{Success: false, Message: err.Error()}, nil
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		logger.WarnContext(ctx, "failed to read webhook response", "error", err)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	logger.InfoContext(ctx, "webhook completed", "status_code", resp.StatusCode)

	return models.ActionResult{
		Success: success,
		Message: fmt.Sprintf("webhook responded with status %d", resp.StatusCode),
		Data: map[string]any{
			"status_code": resp.StatusCode,
			"body":        string(responseBody),
		},
	}, nil
}
