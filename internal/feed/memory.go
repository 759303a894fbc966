package feed

import (
	"errors"
	"sync"
)

// MemoryFeed is an in-process Feed used by tests and single-process setups.
// Publish mirrors the trigger layout: participant and message events are
// delivered only to the event's room, translation events to every
// subscription.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[*MemorySubscription]struct{}
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		subs: make(map[*MemorySubscription]struct{}),
	}
}

func (f *MemoryFeed) Subscribe(roomId string) (Subscription, error) {
	sub := &MemorySubscription{
		feed:   f,
		roomId: roomId,
		events: make(chan Event, eventBuffer),
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return sub, nil
}

// Publish delivers ev to matching subscriptions. roomId scopes participant
// and message events; it is ignored for translation events.
func (f *MemoryFeed) Publish(roomId string, ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		if ev.TranslationAdded == nil && sub.roomId != roomId {
			continue
		}

		select {
		case sub.events <- ev:
		default:
		}
	}
}

// CloseAll tears down every open subscription, closing their event
// channels. Simulates a transport-level failure in tests.
func (f *MemoryFeed) CloseAll() {
	f.mu.Lock()
	subs := make([]*MemorySubscription, 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

type MemorySubscription struct {
	feed   *MemoryFeed
	roomId string
	events chan Event

	closeOnce sync.Once
	closed    bool
}

func (s *MemorySubscription) Events() <-chan Event {
	return s.events
}

func (s *MemorySubscription) Close() error {
	var err error = errors.New("subscription already closed")
	s.closeOnce.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
		close(s.events)
		err = nil
	})
	return err
}
