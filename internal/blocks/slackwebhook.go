package blocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// BlockTypeSlackWebhook — тег типа блока Slack-уведомления.
const BlockTypeSlackWebhook = "SlackWebhook"

// Ключи входов Slack-блока.
const (
	inputWebhookURL = "url"
	inputMessage    = "message"
)

// SlackWebhook — блок отправки сообщения в Slack incoming webhook.
//
// Входы:
//
//	{"url": "https://hooks.slack.com/services/...", "message": "deploy {{check.code}}"}
//
// Выходы:
//
//	{"message": "deploy 200"}
type SlackWebhook struct {
	client *http.Client
}

// NewSlackWebhook создаёт новый SlackWebhook.
func NewSlackWebhook() *SlackWebhook {
	return &SlackWebhook{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Type возвращает тег типа блока.
func (b *SlackWebhook) Type() string {
	return BlockTypeSlackWebhook
}

// Run отправляет сообщение.
func (b *SlackWebhook) Run(ctx context.Context, req *Request) (*Result, error) {
	url := InputString(req.Input, inputWebhookURL)
	if url == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidInput, BlockTypeSlackWebhook)
	}
	message := InputString(req.Input, inputMessage)

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("slack webhook failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("slack webhook returned HTTP %d", resp.StatusCode)
	}

	return Plain(map[string]string{
		inputMessage: message,
	}), nil
}
