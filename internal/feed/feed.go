// Package feed delivers row-level insert/delete notifications for a room's
// data as typed events, independent of the concrete transport.
package feed

// Subscription is a live event stream for one room. Events is closed when
// the subscription fails or is closed; consumers decide whether to
// re-subscribe.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Feed hands out per-room subscriptions. Participants and messages arrive
// scoped to the room; translations arrive for every room and carry enough
// context to filter client-side.
type Feed interface {
	Subscribe(roomId string) (Subscription, error)
}
