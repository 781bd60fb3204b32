package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

// Relay posts notifications to an external webhook.
type Relay struct {
	URL     string
	HTTP    *http.Client
	Skip    bool
	breaker *gobreaker.CircuitBreaker
}

// NewRelay creates a relay. With skip set, notifications are only logged.
// breaker may be nil.
func NewRelay(url string, skip bool, breaker *gobreaker.CircuitBreaker) *Relay {
	return &Relay{
		URL:     url,
		Skip:    skip || url == "",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
	}
}

type webhookPayload struct {
	Text         string       `json:"text"`
	Notification Notification `json:"notification"`
}

// Send delivers n to the webhook.
func (r *Relay) Send(ctx context.Context, n Notification) error {
	if r.Skip {
		log.Printf("notification [%s] %s: %s", n.Variant, n.Title, n.Description)
		return nil
	}
	if r.breaker == nil {
		return r.post(ctx, n)
	}
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.post(ctx, n)
	})
	return err
}

func (r *Relay) post(ctx context.Context, n Notification) error {
	body, err := json.Marshal(webhookPayload{Text: n.Title + ": " + n.Description, Notification: n})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("webhook error %s: %s", resp.Status, string(msg))
	}
	return nil
}

// Health checks that the webhook host answers at all.
func (r *Relay) Health(ctx context.Context) error {
	if r.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.URL, nil)
	if err != nil {
		return err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook unavailable")
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return errors.Errorf("webhook unhealthy: %s", resp.Status)
	}
	return nil
}
