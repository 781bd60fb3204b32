package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/pkg/errors"

	"escola/internal/queue"
)

// MessageType tags notification messages on the queue.
const MessageType = "notification"

// Publisher forwards notifications to a queue for the worker to relay.
type Publisher struct {
	q       queue.Queue
	timeout time.Duration
}

// NewPublisher creates a publisher on q.
func NewPublisher(q queue.Queue) *Publisher {
	return &Publisher{q: q, timeout: 2 * time.Second}
}

// Notify publishes n. Failures are logged and never reach the caller.
func (p *Publisher) Notify(ctx context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	msg, err := Encode(n)
	if err != nil {
		log.Printf("notify: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.q.Publish(ctx, msg); err != nil {
		log.Printf("notify: publish failed: %v", err)
	}
}

// Encode wraps n into a queue message.
func Encode(n Notification) (queue.Message, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return queue.Message{}, errors.Wrap(err, "encode notification")
	}
	return queue.Message{Type: MessageType, Body: body}, nil
}

// Decode extracts the notification carried by msg.
func Decode(msg queue.Message) (Notification, error) {
	if msg.Type != MessageType {
		return Notification{}, errors.Errorf("unexpected message type %q", msg.Type)
	}
	var n Notification
	err := json.Unmarshal(msg.Body, &n)
	return n, errors.Wrap(err, "decode notification")
}
