package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"busbooking/internal/utils"
)

// LogSender writes the notice to the log instead of delivering it.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	utils.LogEventCtx(ctx, "notify", "log_send", fmt.Sprintf("channel=%s subject=%q to=%s", msg.Channel, msg.Subject, mask(msg.Destination)))
	return nil
}

// WebhookSender POSTs the message as JSON to URL; any non-2xx is an error.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

func (w WebhookSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := utils.RequestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
