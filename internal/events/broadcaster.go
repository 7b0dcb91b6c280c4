// Package events provides the in-process broadcast channel for conjunto
// domain events. One Broadcaster lives for the process lifetime; publishing
// is best-effort and never blocks or fails the publishing orchestrator.
package events

import (
	"log/slog"
	"sync"

	"victus/internal/conjunto/models"
)

const defaultSubscriberBuffer = 16

// Broadcaster multicasts events to live subscribers and replays the single
// most recent event to late joiners. A subscriber that cannot keep up has
// events dropped rather than slowing publishers down.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan models.Event
	last   *models.Event
	nextID uint64
	buffer int
	closed bool
	logger *slog.Logger
	onDrop func()
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithLogger sets the logger used for dropped-event reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Broadcaster) { b.logger = logger }
}

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(size int) Option {
	return func(b *Broadcaster) {
		if size > 0 {
			b.buffer = size
		}
	}
}

// WithDropHook registers a callback invoked once per dropped event, used to
// feed the dropped-events counter.
func WithDropHook(hook func()) Option {
	return func(b *Broadcaster) { b.onDrop = hook }
}

// NewBroadcaster builds a Broadcaster. Construct once at process start and
// Close at shutdown.
func NewBroadcaster(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		subs:   make(map[uint64]chan models.Event),
		buffer: defaultSubscriberBuffer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers event to every live subscriber without blocking. A full
// subscriber buffer drops the event for that subscriber only, with a log
// line; publishers never observe the failure.
func (b *Broadcaster) Publish(event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last = &event
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event dropped: subscriber buffer full",
				"subscriber", id, "tipo", event.Type, "conjunto_id", event.Conjunto.ID)
			if b.onDrop != nil {
				b.onDrop()
			}
		}
	}
}

// Subscribe registers a live feed. The most recent event, if any, is
// delivered first. The returned cancel func must be called when the
// subscriber disconnects; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan models.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.last != nil {
		ch <- *b.last
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close tears down the broadcast channel, closing every subscriber feed.
// Publish and Subscribe become no-ops afterwards.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
