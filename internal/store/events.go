package store

import (
	"errors"
	"time"

	"babelroom/internal/feed"
	"babelroom/internal/types"
)

// subscribe establishes the room's change-feed subscription, tearing down
// any existing one first. At most one subscription is live per store.
func (s *RoomStore) subscribe(roomId string) error {
	sub, err := s.feed.Subscribe(roomId)
	if err != nil {
		return &SubscriptionError{Err: err}
	}

	s.mu.Lock()
	prev := s.sub
	s.sub = sub
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	go s.consume(sub, roomId)
	return nil
}

// consume dispatches feed events until the subscription's channel closes.
// A close while the room is still active is a transport failure: re-subscribe
// after a fixed delay, retrying until the feed recovers or the room changes.
func (s *RoomStore) consume(sub feed.Subscription, roomId string) {
	for ev := range sub.Events() {
		s.apply(ev)
	}

	s.mu.Lock()
	lost := s.sub == sub && s.state.RoomId == roomId
	if lost {
		s.sub = nil
	}
	s.mu.Unlock()

	if !lost {
		// closed deliberately by leave or replacement
		return
	}

	serr := &SubscriptionError{Err: errors.New("event channel closed")}
	s.log.Printf("room %q: %v, re-subscribing in %s", roomId, serr, s.resubscribeDelay)

	for {
		time.Sleep(s.resubscribeDelay)

		s.mu.Lock()
		stale := s.state.RoomId != roomId || s.sub != nil
		s.mu.Unlock()
		if stale {
			return
		}

		if err := s.subscribe(roomId); err != nil {
			s.log.Printf("re-subscribe room %q: %v", roomId, err)
			continue
		}
		return
	}
}

// apply is the single dispatch point for change-feed events. Every merge is
// idempotent so duplicate or out-of-order delivery converges.
func (s *RoomStore) apply(ev feed.Event) {
	switch {
	case ev.ParticipantAdded != nil:
		s.applyParticipantAdded(ev.ParticipantAdded)
	case ev.ParticipantRemoved != nil:
		s.applyParticipantRemoved(ev.ParticipantRemoved)
	case ev.MessageAdded != nil:
		s.applyMessageAdded(ev.MessageAdded)
	case ev.TranslationAdded != nil:
		s.applyTranslationAdded(ev.TranslationAdded)
	}
}

func (s *RoomStore) applyParticipantAdded(ev *feed.ParticipantAdded) {
	s.mu.Lock()
	if s.state.RoomId != ev.RoomId {
		s.mu.Unlock()
		return
	}

	for _, p := range s.state.Participants {
		if p.Id == ev.Id {
			// duplicate delivery, or our own optimistic insert
			s.mu.Unlock()
			return
		}
	}

	p := types.Participant{Id: ev.Id, UserName: ev.UserName, Language: ev.Language}
	s.state.Participants = append(s.state.Participants, p)
	s.mu.Unlock()

	s.notify(Notification{ParticipantJoined: &p})
}

// applyParticipantRemoved replaces the in-memory set with a fresh fetch
// rather than removing locally, so out-of-order delete/insert delivery
// still converges.
func (s *RoomStore) applyParticipantRemoved(ev *feed.ParticipantRemoved) {
	s.mu.Lock()
	roomId := s.state.RoomId
	s.mu.Unlock()
	if roomId != ev.RoomId {
		return
	}

	var replacement []types.Participant
	dbParticipants, err := s.repo.ListParticipants(roomId)
	if err != nil {
		s.log.Printf("refresh participants for room %q: %v", roomId, err)
	} else {
		replacement = make([]types.Participant, len(dbParticipants))
		for i, dp := range dbParticipants {
			replacement[i] = types.Participant{Id: dp.Id, UserName: dp.UserName, Language: dp.Language}
		}
	}

	s.mu.Lock()
	if s.state.RoomId != roomId {
		s.mu.Unlock()
		return
	}
	if replacement != nil {
		s.state.Participants = replacement
	} else {
		// fetch failed; fall back to local removal
		kept := s.state.Participants[:0]
		for _, p := range s.state.Participants {
			if p.Id != ev.Id {
				kept = append(kept, p)
			}
		}
		s.state.Participants = kept
	}
	participants := append([]types.Participant(nil), s.state.Participants...)
	s.mu.Unlock()

	s.notify(Notification{ParticipantLeft: &ParticipantLeft{Id: ev.Id, Participants: participants}})
}

func (s *RoomStore) applyMessageAdded(ev *feed.MessageAdded) {
	s.mu.Lock()
	if s.state.RoomId != ev.RoomId {
		s.mu.Unlock()
		return
	}

	for _, m := range s.state.Messages {
		if m.Id == ev.Id {
			s.mu.Unlock()
			return
		}
	}

	senderName := ""
	for _, p := range s.state.Participants {
		if p.Id == ev.SenderId {
			senderName = p.UserName
			break
		}
	}
	roomId := s.state.RoomId
	s.mu.Unlock()

	if senderName == "" {
		sender, err := s.repo.GetParticipantById(ev.SenderId)
		if err != nil {
			senderName = unknownSender
		} else {
			senderName = sender.UserName
		}
	}

	// translations persisted before this event was delivered
	translations := make(map[string]string)
	existing, err := s.repo.ListTranslations(ev.Id)
	if err != nil {
		s.log.Printf("list translations for message %q: %v", ev.Id, err)
	} else {
		for _, t := range existing {
			translations[t.Language] = t.TranslatedText
		}
	}

	msg := types.Message{
		Id:               ev.Id,
		SenderId:         ev.SenderId,
		SenderName:       senderName,
		OriginalText:     ev.OriginalText,
		OriginalLanguage: ev.OriginalLanguage,
		Translations:     translations,
		CreatedAt:        ev.CreatedAt,
	}

	s.mu.Lock()
	if s.state.RoomId != roomId {
		s.mu.Unlock()
		return
	}
	for _, m := range s.state.Messages {
		if m.Id == ev.Id {
			s.mu.Unlock()
			return
		}
	}
	s.state.Messages = append(s.state.Messages, msg)
	s.mu.Unlock()

	out := msg
	out.Translations = make(map[string]string, len(msg.Translations))
	for lang, text := range msg.Translations {
		out.Translations[lang] = text
	}
	s.notify(Notification{MessageAdded: &out})
}

// applyTranslationAdded merges a translation into its owning message.
// Translation events arrive unscoped; a message id outside the local
// history means another room's message and is ignored. A translation
// racing ahead of its message event is picked up by applyMessageAdded's
// translation fetch.
func (s *RoomStore) applyTranslationAdded(ev *feed.TranslationAdded) {
	s.mu.Lock()
	var merged bool
	for i := range s.state.Messages {
		if s.state.Messages[i].Id != ev.MessageId {
			continue
		}

		if _, ok := s.state.Messages[i].Translations[ev.Language]; !ok {
			s.state.Messages[i].Translations[ev.Language] = ev.TranslatedText
			merged = true
		}
		break
	}
	s.mu.Unlock()

	if merged {
		s.notify(Notification{TranslationAdded: &TranslationAdded{
			MessageId:      ev.MessageId,
			Language:       ev.Language,
			TranslatedText: ev.TranslatedText,
		}})
	}
}
