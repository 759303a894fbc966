package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
)

const (
	// reconnectInterval is the fixed delay between listener reconnect
	// attempts. No backoff; reconnects are unbounded.
	reconnectInterval = 2 * time.Second

	translationsChannel = "translations"

	eventBuffer = 256
)

// notifyPayload is the JSON body emitted by the notify triggers.
type notifyPayload struct {
	Table string          `json:"table"`
	Op    string          `json:"op"`
	Row   json.RawMessage `json:"row"`
}

// PgFeed implements Feed over postgres LISTEN/NOTIFY. Each subscription
// owns its own listener connection.
type PgFeed struct {
	dsn string
	log *log.Logger
}

func NewPgFeed(dsn string, logger *log.Logger) *PgFeed {
	return &PgFeed{dsn: dsn, log: logger}
}

func (f *PgFeed) Subscribe(roomId string) (Subscription, error) {
	listener := pq.NewListener(f.dsn, reconnectInterval, reconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				f.log.Printf("feed listener event %d: %v", ev, err)
			}
		})

	if err := listener.Listen(roomChannel(roomId)); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", roomChannel(roomId), err)
	}
	if err := listener.Listen(translationsChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", translationsChannel, err)
	}

	sub := &pgSubscription{
		roomId:   roomId,
		listener: listener,
		events:   make(chan Event, eventBuffer),
		log:      f.log,
		stop:     make(chan struct{}),
	}
	go sub.run()

	return sub, nil
}

func roomChannel(roomId string) string {
	return "room:" + roomId
}

type pgSubscription struct {
	roomId   string
	listener *pq.Listener
	events   chan Event
	log      *log.Logger
	stop     chan struct{}

	closeOnce sync.Once
}

func (s *pgSubscription) Events() <-chan Event {
	return s.events
}

func (s *pgSubscription) Close() error {
	var err error = errors.New("subscription already closed")
	s.closeOnce.Do(func() {
		close(s.stop)
		err = s.listener.Close()
	})
	return err
}

func (s *pgSubscription) run() {
	defer close(s.events)

	for {
		select {
		case n, ok := <-s.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// the driver reconnected; notifications may have been
				// missed while the connection was down
				s.log.Printf("feed for room %q reconnected", s.roomId)
				continue
			}

			ev, err := s.decode(n)
			if err != nil {
				s.log.Printf("feed: decode notification on %q: %v", n.Channel, err)
				continue
			}
			if ev == nil {
				continue
			}

			select {
			case s.events <- *ev:
			default:
				s.log.Printf("feed: event buffer full for room %q, dropping event", s.roomId)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *pgSubscription) decode(n *pq.Notification) (*Event, error) {
	var payload notifyPayload
	if err := json.Unmarshal([]byte(n.Extra), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	switch payload.Table {
	case "participants":
		switch payload.Op {
		case "INSERT":
			var row ParticipantAdded
			if err := json.Unmarshal(payload.Row, &row); err != nil {
				return nil, fmt.Errorf("unmarshal participant row: %w", err)
			}
			return &Event{ParticipantAdded: &row}, nil
		case "DELETE":
			var row ParticipantRemoved
			if err := json.Unmarshal(payload.Row, &row); err != nil {
				return nil, fmt.Errorf("unmarshal participant row: %w", err)
			}
			return &Event{ParticipantRemoved: &row}, nil
		}
	case "messages":
		var row MessageAdded
		if err := json.Unmarshal(payload.Row, &row); err != nil {
			return nil, fmt.Errorf("unmarshal message row: %w", err)
		}
		return &Event{MessageAdded: &row}, nil
	case "translations":
		var row TranslationAdded
		if err := json.Unmarshal(payload.Row, &row); err != nil {
			return nil, fmt.Errorf("unmarshal translation row: %w", err)
		}
		return &Event{TranslationAdded: &row}, nil
	}

	return nil, fmt.Errorf("unexpected table %q op %q", payload.Table, payload.Op)
}
