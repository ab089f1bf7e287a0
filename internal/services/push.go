package services

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

// ErrTokenInvalid is returned by a push sender when the gateway reports
// a device token as permanently invalid. Such tokens are safe to prune.
var ErrTokenInvalid = errors.New("device token permanently invalid")

// PushMessage is one notification addressed to one device token.
type PushMessage struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	ListID  string `json:"list_id,omitempty"`
	ChoreID string `json:"chore_id,omitempty"`
}

// PushSender delivers push messages to device tokens. Probe checks a
// token's validity without sending a visible notification.
type PushSender interface {
	Send(ctx context.Context, message PushMessage) error
	Probe(ctx context.Context, token string) error
}

// HTTPPushSender posts messages to an external push gateway.
type HTTPPushSender struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

func NewHTTPPushSender(gatewayURL string, apiKey string, timeout time.Duration) *HTTPPushSender {
	return &HTTPPushSender{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: timeout},
	}
}

func (sender *HTTPPushSender) Send(ctx context.Context, message PushMessage) error {
	return sender.post(ctx, sender.gatewayURL+"/send", message)
}

func (sender *HTTPPushSender) Probe(ctx context.Context, token string) error {
	return sender.post(ctx, sender.gatewayURL+"/probe", PushMessage{Token: token})
}

func (sender *HTTPPushSender) post(ctx context.Context, url string, payload PushMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling push message: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if sender.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+sender.apiKey)
	}

	resp, err := sender.client.Do(request)
	if err != nil {
		return fmt.Errorf("sending push message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		// The gateway reports unregistered tokens with 404/410.
		return ErrTokenInvalid
	case resp.StatusCode >= 400:
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}

// NoopPushSender discards all messages. Used when no gateway is
// configured.
type NoopPushSender struct{}

func (NoopPushSender) Send(ctx context.Context, message PushMessage) error { return nil }
func (NoopPushSender) Probe(ctx context.Context, token string) error       { return nil }
