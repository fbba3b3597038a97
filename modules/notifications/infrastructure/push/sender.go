package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Message struct {
	Token    string `json:"to"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	DeepLink string `json:"-"`
}

// Sender delivers a push message to a device token. Implementations must be
// time-bounded; the dispatcher isolates their failures from the mutation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender posts Expo-format push payloads to a configurable endpoint.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSender(endpoint string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	payload := struct {
		Message
		Data map[string]string `json:"data,omitempty"`
	}{Message: msg}
	if msg.DeepLink != "" {
		payload.Data = map[string]string{"url": msg.DeepLink}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push endpoint returned %s", resp.Status)
	}
	return nil
}

// NopSender discards messages. Used when push delivery is disabled.
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }
