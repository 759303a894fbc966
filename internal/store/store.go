// Package store holds the client-visible state of the active room and
// mediates between user actions, the persistence layer and the realtime
// change feed. One RoomStore serves one client session.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/teris-io/shortid"

	"babelroom/internal/database"
	"babelroom/internal/feed"
	"babelroom/internal/identity"
	"babelroom/internal/languages"
	"babelroom/internal/stats"
	"babelroom/internal/translation"
	"babelroom/internal/types"
)

const (
	// TranslationFailedText is stored in place of a translation whose
	// request failed, so the failure renders visibly instead of blank.
	TranslationFailedText = "[translation unavailable]"

	unknownSender = "Unknown"

	defaultResubscribeDelay = 2 * time.Second

	notificationBuffer = 256
)

type Status int

const (
	StatusUnjoined Status = iota
	StatusJoining
	StatusJoined
	StatusLeft
)

// State is the session's view of the active room. It is a derived,
// eventually consistent cache over the durable store.
type State struct {
	Status        Status
	RoomId        string
	RoomCode      string
	ParticipantId string
	Language      string
	Participants  []types.Participant
	Messages      []types.Message
	LastError     string
}

func (st State) clone() State {
	out := st
	out.Participants = append([]types.Participant(nil), st.Participants...)
	out.Messages = make([]types.Message, len(st.Messages))
	for i, m := range st.Messages {
		cp := m
		cp.Translations = make(map[string]string, len(m.Translations))
		for lang, text := range m.Translations {
			cp.Translations[lang] = text
		}
		out.Messages[i] = cp
	}
	return out
}

type RoomStore struct {
	repo       database.ChatRepository
	feed       feed.Feed
	translator translation.Translator
	creds      identity.Store
	log        *log.Logger
	stats      stats.Provider

	mu    sync.Mutex
	state State
	sub   feed.Subscription

	notifications chan Notification

	// overridable in tests
	generateId       func() (string, error)
	generateCode     func() string
	resubscribeDelay time.Duration
}

// NewRoomStore builds a store over the given collaborators. creds may be
// nil when the caller manages identity itself (e.g. a browser holding its
// own cache).
func NewRoomStore(repo database.ChatRepository, f feed.Feed, translator translation.Translator,
	creds identity.Store, logger *log.Logger, sp stats.Provider) *RoomStore {
	return &RoomStore{
		repo:             repo,
		feed:             f,
		translator:       translator,
		creds:            creds,
		log:              logger,
		stats:            sp,
		notifications:    make(chan Notification, notificationBuffer),
		generateId:       shortid.Generate,
		generateCode:     generateRoomCode,
		resubscribeDelay: defaultResubscribeDelay,
	}
}

// generateRoomCode returns six random decimal digits. Uniqueness is not
// checked.
func generateRoomCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}

// Notifications delivers state-change events for the view layer. Events
// are dropped if the consumer falls behind.
func (s *RoomStore) Notifications() <-chan Notification {
	return s.notifications
}

// Snapshot returns a copy of the current session state.
func (s *RoomStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ClearError clears the last-error field.
func (s *RoomStore) ClearError() {
	s.mu.Lock()
	s.state.LastError = ""
	s.mu.Unlock()
}

// CreateRoom creates a room with a fresh 6-digit code and the creator as
// its only participant, then subscribes to the room's change feed. Returns
// the room code and the creator's participant id.
func (s *RoomStore) CreateRoom(creatorName, language string) (string, string, error) {
	if !languages.IsSupported(language) {
		return "", "", ErrUnsupportedLanguage
	}

	s.setJoining()

	roomCode := s.generateCode()
	roomId, err := s.generateId()
	if err != nil {
		return "", "", s.failJoin("generate room id", err)
	}
	participantId, err := s.generateId()
	if err != nil {
		return "", "", s.failJoin("generate participant id", err)
	}

	room, err := s.repo.CreateRoom(database.CreateRoomParams{
		Id:        roomId,
		Code:      roomCode,
		CreatedBy: creatorName,
	})
	if err != nil {
		return "", "", s.failJoin("create room", err)
	}

	p, err := s.repo.CreateParticipant(database.CreateParticipantParams{
		Id:       participantId,
		RoomId:   room.Id,
		UserName: creatorName,
		Language: language,
	})
	if err != nil {
		return "", "", s.failJoin("create participant", err)
	}

	s.mu.Lock()
	s.state = State{
		Status:        StatusJoined,
		RoomId:        room.Id,
		RoomCode:      room.Code,
		ParticipantId: p.Id,
		Language:      p.Language,
		Participants: []types.Participant{
			{Id: p.Id, UserName: p.UserName, Language: p.Language},
		},
		Messages: make([]types.Message, 0),
	}
	s.mu.Unlock()

	if err := s.subscribe(room.Id); err != nil {
		// the consume loop's retry path never runs without a first
		// subscription, so surface loudly and let the caller re-join
		s.log.Printf("subscribe room %q: %v", room.Id, err)
	}

	s.saveCredentials()
	s.stats.Incr(stats.RoomsCreated)

	return room.Code, p.Id, nil
}

// JoinRoom resolves the room by code and joins it, resuming a cached
// participant identity when one still references a live row. On resumption
// the participant's persisted language wins over the argument. Returns the
// participant id.
func (s *RoomStore) JoinRoom(roomCode, userName, language string) (string, error) {
	if !languages.IsSupported(language) {
		return "", ErrUnsupportedLanguage
	}

	s.setJoining()

	room, err := s.repo.GetRoomByCode(roomCode)
	if errors.Is(err, sql.ErrNoRows) {
		s.mu.Lock()
		s.state.Status = StatusUnjoined
		s.state.LastError = ErrRoomNotFound.Error()
		s.mu.Unlock()
		return "", ErrRoomNotFound
	}
	if err != nil {
		return "", s.failJoin("find room", err)
	}

	var p database.Participant
	var resumed bool
	if s.creds != nil {
		if cached, ok := s.creds.Lookup(roomCode); ok && cached.ParticipantId != "" {
			existing, err := s.repo.GetParticipantById(cached.ParticipantId)
			if err == nil && existing.RoomId == room.Id {
				p = existing
				resumed = true
			}
		}
	}

	if !resumed {
		participantId, err := s.generateId()
		if err != nil {
			return "", s.failJoin("generate participant id", err)
		}

		p, err = s.repo.CreateParticipant(database.CreateParticipantParams{
			Id:       participantId,
			RoomId:   room.Id,
			UserName: userName,
			Language: language,
		})
		if err != nil {
			return "", s.failJoin("create participant", err)
		}
	}

	dbParticipants, err := s.repo.ListParticipants(room.Id)
	if err != nil {
		return "", s.failJoin("list participants", err)
	}

	history, err := s.repo.GetMessageHistory(room.Id)
	if err != nil {
		return "", s.failJoin("fetch message history", err)
	}

	participants := make([]types.Participant, len(dbParticipants))
	for i, dp := range dbParticipants {
		participants[i] = types.Participant{Id: dp.Id, UserName: dp.UserName, Language: dp.Language}
	}

	messages := make([]types.Message, 0, len(history))
	for _, rec := range history {
		senderName := rec.SenderName
		if senderName == "" {
			senderName = unknownSender
		}

		translations := make(map[string]string, len(rec.Translations))
		for _, t := range rec.Translations {
			translations[t.Language] = t.TranslatedText
		}

		messages = append(messages, types.Message{
			Id:               rec.Id,
			SenderId:         rec.SenderId,
			SenderName:       senderName,
			OriginalText:     rec.OriginalText,
			OriginalLanguage: rec.OriginalLanguage,
			Translations:     translations,
			CreatedAt:        rec.CreatedAt,
		})
	}

	s.mu.Lock()
	s.state = State{
		Status:        StatusJoined,
		RoomId:        room.Id,
		RoomCode:      room.Code,
		ParticipantId: p.Id,
		Language:      p.Language,
		Participants:  participants,
		Messages:      messages,
	}
	s.mu.Unlock()

	if err := s.subscribe(room.Id); err != nil {
		s.log.Printf("subscribe room %q: %v", room.Id, err)
	}

	s.saveCredentials()
	s.stats.Incr(stats.RoomsJoined)

	return p.Id, nil
}

// Shutdown closes the active subscription without leaving the room. The
// participant row survives, so a later session can resume it through the
// credential cache.
func (s *RoomStore) Shutdown() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// LeaveRoom tears down the subscription, deletes the participant row and
// clears room-scoped session fields. Rendered history is preserved until
// the caller discards the store. A failed delete is logged and counted,
// never surfaced.
func (s *RoomStore) LeaveRoom() {
	s.mu.Lock()
	if s.state.RoomId == "" || s.state.ParticipantId == "" {
		s.mu.Unlock()
		return
	}

	roomCode := s.state.RoomCode
	participantId := s.state.ParticipantId
	sub := s.sub
	s.sub = nil

	s.state.RoomId = ""
	s.state.RoomCode = ""
	s.state.ParticipantId = ""
	s.state.Language = ""
	s.state.Status = StatusLeft
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}

	if err := s.repo.DeleteParticipant(participantId); err != nil {
		// the row is now orphaned server-side while this client believes
		// it has left
		s.log.Printf("delete participant %q: %v", participantId, err)
		s.stats.Incr(stats.ParticipantDeleteFailures)
	}

	if s.creds != nil {
		if err := s.creds.Remove(roomCode); err != nil {
			s.log.Printf("remove credentials for room %q: %v", roomCode, err)
		}
	}
}

// SendMessage persists a message under the current participant, then fans
// out one translation per distinct participant language other than the
// sender's. Translation failures are stored as a visible placeholder and
// never block the message or other languages.
func (s *RoomStore) SendMessage(ctx context.Context, text string) error {
	s.mu.Lock()
	roomId := s.state.RoomId
	participantId := s.state.ParticipantId
	language := s.state.Language

	targets := make([]string, 0, len(s.state.Participants))
	seen := map[string]struct{}{language: {}}
	for _, p := range s.state.Participants {
		if _, ok := seen[p.Language]; ok {
			continue
		}
		seen[p.Language] = struct{}{}
		targets = append(targets, p.Language)
	}
	s.mu.Unlock()

	if roomId == "" || participantId == "" || language == "" {
		s.setError(ErrNotInRoom.Error())
		return ErrNotInRoom
	}

	messageId, err := s.generateId()
	if err != nil {
		perr := &PersistenceError{Op: "generate message id", Err: err}
		s.setError(perr.Error())
		return perr
	}

	msg, err := s.repo.CreateMessage(database.CreateMessageParams{
		Id:               messageId,
		RoomId:           roomId,
		SenderId:         participantId,
		OriginalText:     text,
		OriginalLanguage: language,
	})
	if err != nil {
		// the room is kept; only the error field is set
		perr := &PersistenceError{Op: "create message", Err: err}
		s.setError(perr.Error())
		return perr
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			s.translateAndPersist(ctx, msg.Id, text, target)
		}(target)
	}
	wg.Wait()

	s.stats.Incr(stats.MessagesSent)
	return nil
}

func (s *RoomStore) translateAndPersist(ctx context.Context, messageId, text, target string) {
	translated, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		s.log.Printf("translate message %q to %q: %v", messageId, target, err)
		s.stats.Incr(stats.TranslationFailures)
		translated = TranslationFailedText
	}

	_, err = s.repo.CreateTranslation(database.CreateTranslationParams{
		MessageId:      messageId,
		Language:       target,
		TranslatedText: translated,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a translation for this (message, language) already exists
	case err != nil:
		s.log.Printf("persist translation for message %q to %q: %v", messageId, target, err)
	default:
		s.stats.Incr(stats.TranslationsCreated)
	}
}

func (s *RoomStore) setJoining() {
	s.mu.Lock()
	s.state.Status = StatusJoining
	s.state.LastError = ""
	s.mu.Unlock()
}

func (s *RoomStore) failJoin(op string, err error) error {
	perr := &PersistenceError{Op: op, Err: err}
	s.mu.Lock()
	s.state.Status = StatusUnjoined
	s.state.LastError = perr.Error()
	s.mu.Unlock()
	return perr
}

func (s *RoomStore) setError(msg string) {
	s.mu.Lock()
	s.state.LastError = msg
	s.mu.Unlock()
	s.notify(Notification{Error: msg})
}

func (s *RoomStore) saveCredentials() {
	if s.creds == nil {
		return
	}

	s.mu.Lock()
	roomCode := s.state.RoomCode
	creds := identity.Credentials{
		ParticipantId: s.state.ParticipantId,
		Language:      s.state.Language,
	}
	for _, p := range s.state.Participants {
		if p.Id == creds.ParticipantId {
			creds.UserName = p.UserName
			break
		}
	}
	s.mu.Unlock()

	if err := s.creds.Save(roomCode, creds); err != nil {
		s.log.Printf("save credentials for room %q: %v", roomCode, err)
	}
}

func (s *RoomStore) notify(n Notification) {
	select {
	case s.notifications <- n:
	default:
		s.log.Println("notification buffer full, dropping notification")
	}
}
