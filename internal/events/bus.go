// Package events is the publish/subscribe channel for domain notifications
// such as "message created". A bus is constructed explicitly and owned by
// the application context; there is no package-level instance.
package events

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing to or subscribing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// Bus fans every published event out to all live subscriptions.
type Bus[T any] interface {
	Publish(ctx context.Context, event T) error
	// Subscribe registers a listener. The subscription ends when ctx is
	// done, Close is called on it, or the bus shuts down.
	Subscribe(ctx context.Context) (*Subscription[T], error)
	Close() error
}

// Subscription delivers events on C until it is closed.
type Subscription[T any] struct {
	C <-chan T

	cancel func()
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() { s.cancel() }
