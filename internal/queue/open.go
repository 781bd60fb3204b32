package queue

import (
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"escola/internal/config"
)

// Open returns the queue named by cfg.QueueBackend and a function releasing it.
func Open(cfg config.App, client *redis.Client) (Queue, func() error, error) {
	noop := func() error { return nil }
	switch cfg.QueueBackend {
	case "memory", "":
		return NewInMemory(64), noop, nil
	case "redis":
		return NewRedisQueue(client, cfg.QueueName), noop, nil
	case "rabbitmq":
		q, err := NewRabbitMQ(cfg.AMQPURL, cfg.QueueName)
		if err != nil {
			return nil, noop, err
		}
		return q, q.Close, nil
	default:
		return nil, noop, errors.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}
