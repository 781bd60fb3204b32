package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ is a durable queue on a RabbitMQ broker.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

// NewRabbitMQ dials the broker and declares the queue.
func NewRabbitMQ(amqpURL, name string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	_, err = ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrapf(err, "declare queue %s", name)
	}
	return &RabbitMQ{conn: conn, ch: ch, name: name}, nil
}

// Publish sends a persistent JSON message through the default exchange.
func (q *RabbitMQ) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode message")
	}
	err = q.ch.PublishWithContext(ctx, "", q.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         msg.Type,
		Body:         payload,
	})
	return errors.Wrap(err, "amqp publish")
}

// Consume acknowledges each delivery once it was handed to the reader.
func (q *RabbitMQ) Consume(ctx context.Context) (<-chan Message, error) {
	deliveries, err := q.ch.ConsumeWithContext(ctx, q.name, "", false, false, false, false, nil)
	if err != nil {
		return nil, errors.Wrap(err, "amqp consume")
	}
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					log.Printf("rabbitmq %s: dropping malformed message: %v", q.name, err)
					_ = d.Reject(false)
					continue
				}
				select {
				case out <- msg:
					_ = d.Ack(false)
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close closes the channel and the connection.
func (q *RabbitMQ) Close() error {
	if q.ch != nil {
		if err := q.ch.Close(); err != nil {
			return err
		}
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
