package config

import (
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates a breaker that opens after 3 consecutive failures.
// Errors matching one of ignore are answers from a healthy dependency and do
// not count as failures.
func NewCircuitBreaker(name string, ignore ...error) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			for _, target := range ignore {
				if errors.Is(err, target) {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
