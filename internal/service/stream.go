package service

import (
	"sync"

	"standfinder/internal/model"
)

// Broadcaster fans the published stands out to every subscriber.
// Each subscriber has a mailbox of one slot that always holds the most
// recent value, so a slow reader skips intermediate sets but never sees a
// stale one last.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan []model.Stand]struct{}
	closed      bool
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan []model.Stand]struct{}),
	}
}

// Subscribe registers a new subscriber and primes it with initial.
// The returned func unsubscribes and closes the channel; it is safe to call
// more than once.
func (b *Broadcaster) Subscribe(initial []model.Stand) (<-chan []model.Stand, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []model.Stand, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- initial
	b.subscribers[ch] = struct{}{}

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
	}
}

// Publish delivers stands to every subscriber without blocking
func (b *Broadcaster) Publish(stands []model.Stand) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- stands:
			continue
		default:
		}
		// Mailbox full: replace the pending value with the newer one.
		select {
		case <-ch:
		default:
		}
		ch <- stands
	}
}

// Count returns the number of live subscribers
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel and rejects new subscriptions
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}
