package notify

import (
	"context"
	"sync"
	"time"

	"go-storefront/logger"
	"go-storefront/metrics"

	"github.com/rs/zerolog"
)

// Sink is an external destination for status changes
type Sink interface {
	Name() string
	Publish(ctx context.Context, evt StatusChange) error
}

// Dispatcher fans a StatusChange out to the local hub and to sinks.
// Notify never blocks on a sink and never reports a failure.
type Dispatcher struct {
	hub     *Hub
	sinks   []Sink
	timeout time.Duration
	wg      sync.WaitGroup
	logger  zerolog.Logger
}

// NewDispatcher creates a dispatcher. hub may be nil when a relay sink
// delivers to the local hub instead.
func NewDispatcher(hub *Hub, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		hub:     hub,
		sinks:   sinks,
		timeout: timeout,
		logger:  logger.WithComponent("notify"),
	}
}

// Notify publishes evt
func (d *Dispatcher) Notify(evt StatusChange) {
	if d.hub != nil {
		n := d.hub.Publish(evt)
		metrics.NotificationsPublishedTotal.WithLabelValues("hub").Inc()
		d.logger.Debug().
			Str("order_id", evt.OrderID).
			Str("user_id", evt.UserID).
			Int("delivered", n).
			Msg("status change pushed to live connections")
	}

	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(sink Sink) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := sink.Publish(ctx, evt); err != nil {
				metrics.NotificationsDroppedTotal.WithLabelValues("sink_error").Inc()
				d.logger.Warn().Err(err).
					Str("sink", sink.Name()).
					Str("order_id", evt.OrderID).
					Msg("failed to publish status change")
				return
			}
			metrics.NotificationsPublishedTotal.WithLabelValues(sink.Name()).Inc()
		}(sink)
	}
}

// Wait blocks until in-flight sink deliveries finish
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
