package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/example/room-reservations/internal/scheduler"
)

// BreakerConfig tunes the circuit breaker around an outbound notifier.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig opens after five consecutive failures and probes again
// after thirty seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker stops calling a failing notifier until it recovers. While open,
// Notify returns gobreaker.ErrOpenState immediately.
type Breaker struct {
	next    Notifier
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreaker wraps next.
func NewBreaker(next Notifier, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notifier circuit breaker state changed",
				"notifier", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &Breaker{next: next, breaker: gobreaker.NewCircuitBreaker[any](settings)}
}

// Notify implements Notifier.
func (b *Breaker) Notify(ctx context.Context, event Event, r scheduler.Reservation) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.next.Notify(ctx, event, r)
	})
	return err
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}
