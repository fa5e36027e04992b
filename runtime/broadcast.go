package runtime

import (
	"chat-rooms/domain/event"
	"sync"
	"sync/atomic"
)

const BroadcastChannelCapacity = 100

// Broadcaster publishes events to every current subscriber of a room.
//
// Delivery is best-effort: each subscriber owns a bounded buffer and Publish never blocks.
// A subscriber lagging behind misses events instead of stalling the others.
// Events published while nobody is subscribed are discarded.
//
// Broadcaster is safe for concurrent use by multiple goroutines.
type Broadcaster struct {
	mu          sync.Mutex
	nextID      uint64
	capacity    int
	subscribers map[uint64]chan event.Event
	dropped     atomic.Uint64
}

func NewBroadcaster(capacity int) *Broadcaster {
	return &Broadcaster{
		capacity:    capacity,
		subscribers: make(map[uint64]chan event.Event),
	}
}

// Subscription is an independent receive-only stream of a Broadcaster.
type Subscription struct {
	id          uint64
	events      chan event.Event
	broadcaster *Broadcaster
	once        sync.Once
}

// Subscribe registers a new subscriber. It receives every event published from now on.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:          b.nextID,
		events:      make(chan event.Event, b.capacity),
		broadcaster: b,
	}
	b.subscribers[sub.id] = sub.events
	return sub
}

// Publish delivers evt to every subscriber with room left in its buffer
// and returns how many subscribers received it.
func (b *Broadcaster) Publish(evt event.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// SubscriberCount returns the number of open subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Dropped returns how many deliveries were lost to lagging subscribers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Broadcaster) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Events returns the receiving end. It is closed once the subscription is closed
// and the remaining buffered events have been read.
func (s *Subscription) Events() <-chan event.Event {
	return s.events
}

// Close releases the subscriber slot. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broadcaster.unsubscribe(s.id)
	})
}
