// Package notify fans out journal change events to subscribers of one owner.
// Publishing never blocks: a subscriber that falls behind misses events and is
// expected to pull a fresh snapshot.
package notify

import (
	"sync"
	"time"
)

type EventKind string

const (
	EntryCreated EventKind = "entry_created"
	EntryUpdated EventKind = "entry_updated"
	EntryDeleted EventKind = "entry_deleted"
)

type Event struct {
	Kind     EventKind
	Owner    string
	RecordID int64
	At       time.Time
}

type Publisher interface {
	Publish(e Event)
}

type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe returns a channel of owner's events and a func that ends the subscription.
func (b *Broker) Subscribe(owner string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs[owner] == nil {
		b.subs[owner] = make(map[chan Event]struct{})
	}
	b.subs[owner][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[owner][ch]; !ok {
				return
			}
			delete(b.subs[owner], ch)
			if len(b.subs[owner]) == 0 {
				delete(b.subs, owner)
			}
			close(ch)
		})
	}
}

func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[e.Owner] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close ends every subscription.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for owner, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, owner)
	}
	return nil
}
