package events

import (
	"context"
	"log/slog"
	"sync"
)

const defaultBuffer = 64

// LocalBus is an in-process bus. Delivery is best effort per subscriber:
// a subscriber whose buffer is full is dropped so publishers never block.
type LocalBus[T any] struct {
	mu     sync.RWMutex
	subs   map[uint64]chan T
	nextID uint64
	closed bool
	buffer int
	log    *slog.Logger
}

// Option tunes a bus at construction.
type Option func(*options)

type options struct {
	buffer int
}

// WithBuffer sets how many events a subscriber may fall behind before it is
// dropped. Values below 1 keep the default.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

func NewLocalBus[T any](log *slog.Logger, opts ...Option) *LocalBus[T] {
	o := options{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return &LocalBus[T]{
		subs:   make(map[uint64]chan T),
		buffer: o.buffer,
		log:    log,
	}
}

func (b *LocalBus[T]) Publish(_ context.Context, event T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn("dropping slow subscriber", "subscriber", id)
			delete(b.subs, id)
			close(ch)
		}
	}
	return nil
}

func (b *LocalBus[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	ch := make(chan T, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			b.remove(id)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return &Subscription[T]{C: ch, cancel: cancel}, nil
}

// Subscribers reports the number of live subscriptions.
func (b *LocalBus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *LocalBus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *LocalBus[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
