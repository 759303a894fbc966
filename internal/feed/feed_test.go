package feed

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMemoryFeed_scopesRoomEvents(t *testing.T) {
	f := NewMemoryFeed()

	subA, err := f.Subscribe("room-a")
	assert.NoError(t, err)
	subB, err := f.Subscribe("room-b")
	assert.NoError(t, err)

	f.Publish("room-a", Event{
		ParticipantAdded: &ParticipantAdded{Id: "p1", RoomId: "room-a", UserName: "alice", Language: "en"},
	})

	select {
	case ev := <-subA.Events():
		assert.NotNil(t, ev.ParticipantAdded, "expected a participant added event")
		assert.Equal(t, "p1", ev.ParticipantAdded.Id)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout: subscription for room-a received no event")
	}

	select {
	case ev := <-subB.Events():
		t.Fatalf("subscription for room-b received event for room-a: %+v", ev)
	default:
	}
}

func TestMemoryFeed_translationsAreUnscoped(t *testing.T) {
	f := NewMemoryFeed()

	subA, _ := f.Subscribe("room-a")
	subB, _ := f.Subscribe("room-b")

	f.Publish("room-a", Event{
		TranslationAdded: &TranslationAdded{MessageId: "m1", Language: "de", TranslatedText: "Hallo"},
	})

	for _, sub := range []Subscription{subA, subB} {
		select {
		case ev := <-sub.Events():
			assert.NotNil(t, ev.TranslationAdded, "expected a translation added event")
			assert.Equal(t, "de", ev.TranslationAdded.Language)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout: translation event not delivered to every subscription")
		}
	}
}

func TestMemorySubscription_Close(t *testing.T) {
	f := NewMemoryFeed()

	sub, _ := f.Subscribe("room-a")
	assert.NoError(t, sub.Close())

	_, open := <-sub.Events()
	assert.False(t, open, "expected event channel to be closed")

	// publishing after close must not panic
	f.Publish("room-a", Event{
		ParticipantRemoved: &ParticipantRemoved{Id: "p1", RoomId: "room-a"},
	})

	assert.Error(t, sub.Close(), "expected second close to report an error")
}

func TestPgSubscription_decode(t *testing.T) {
	sub := &pgSubscription{roomId: "room-a"}

	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, ev *Event)
		wantErr bool
	}{
		{
			name:    "participant insert",
			payload: `{"table":"participants","op":"INSERT","row":{"id":"p1","room_id":"room-a","user_name":"alice","language":"en"}}`,
			check: func(t *testing.T, ev *Event) {
				assert.NotNil(t, ev.ParticipantAdded)
				assert.Equal(t, "alice", ev.ParticipantAdded.UserName)
			},
		},
		{
			name:    "participant delete",
			payload: `{"table":"participants","op":"DELETE","row":{"id":"p1","room_id":"room-a"}}`,
			check: func(t *testing.T, ev *Event) {
				assert.NotNil(t, ev.ParticipantRemoved)
				assert.Equal(t, "p1", ev.ParticipantRemoved.Id)
			},
		},
		{
			name:    "message insert",
			payload: `{"table":"messages","op":"INSERT","row":{"id":"m1","room_id":"room-a","sender_id":"p1","original_text":"Hello","original_language":"en","created_at":"2025-01-02T03:04:05Z"}}`,
			check: func(t *testing.T, ev *Event) {
				assert.NotNil(t, ev.MessageAdded)
				assert.Equal(t, "Hello", ev.MessageAdded.OriginalText)
				assert.Equal(t, "en", ev.MessageAdded.OriginalLanguage)
			},
		},
		{
			name:    "translation insert",
			payload: `{"table":"translations","op":"INSERT","row":{"message_id":"m1","language":"de","translated_text":"Hallo"}}`,
			check: func(t *testing.T, ev *Event) {
				assert.NotNil(t, ev.TranslationAdded)
				assert.Equal(t, "Hallo", ev.TranslationAdded.TranslatedText)
			},
		},
		{
			name:    "unknown table",
			payload: `{"table":"rooms","op":"INSERT","row":{}}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			payload: `{`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := sub.decode(&pq.Notification{Channel: "room:room-a", Extra: tc.payload})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			tc.check(t, ev)
		})
	}
}
