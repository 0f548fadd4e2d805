package core

import "sync"

// DefaultEventBuffer is the per-subscriber channel buffer used when the
// caller does not specify one.
const DefaultEventBuffer = 100

// Broker fans a store's change events out to subscribers. Publishing never
// blocks the store: each subscriber gets a buffered channel and events are
// dropped for subscribers that fall behind, so a slow consumer cannot stall
// a mutating operation.
type Broker struct {
	mu     sync.Mutex
	buffer int
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBroker creates a broker with the given per-subscriber buffer size.
// Zero means DefaultEventBuffer.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Broker{
		buffer: buffer,
		subs:   make(map[int]chan Event),
	}
}

// Subscribe registers a new consumer. The returned cancel function removes
// the subscription and closes its channel; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has buffer space left.
func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is saturated; drop rather than block the store.
		}
	}
}

// Close tears down all subscriptions. Further Publish calls are no-ops.
func (b *Broker) Close() {
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
