package store

import (
	"database/sql"
	"sync"
	"time"

	"babelroom/internal/database"
	"babelroom/internal/feed"
)

// fakeRepository is an in-memory database.ChatRepository that publishes
// change-feed events on every write, standing in for the notify triggers.
type fakeRepository struct {
	feed *feed.MemoryFeed

	mu           sync.Mutex
	rooms        map[string]database.Room
	participants map[string]database.Participant
	messages     map[string]database.Message
	translations map[string][]database.Translation
	nextTransId  int
}

func newFakeRepository(f *feed.MemoryFeed) *fakeRepository {
	return &fakeRepository{
		feed:         f,
		rooms:        make(map[string]database.Room),
		participants: make(map[string]database.Participant),
		messages:     make(map[string]database.Message),
		translations: make(map[string][]database.Translation),
	}
}

func (r *fakeRepository) Ping() error { return nil }

func (r *fakeRepository) CreateRoom(params database.CreateRoomParams) (database.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := database.Room{
		Id:        params.Id,
		Code:      params.Code,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	r.rooms[room.Id] = room
	return room, nil
}

func (r *fakeRepository) GetRoomByCode(code string) (database.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.Code == code {
			return room, nil
		}
	}
	return database.Room{}, sql.ErrNoRows
}

func (r *fakeRepository) CreateParticipant(params database.CreateParticipantParams) (database.Participant, error) {
	r.mu.Lock()
	p := database.Participant{
		Id:        params.Id,
		RoomId:    params.RoomId,
		UserName:  params.UserName,
		Language:  params.Language,
		CreatedAt: time.Now().UTC(),
	}
	r.participants[p.Id] = p
	r.mu.Unlock()

	r.feed.Publish(p.RoomId, feed.Event{ParticipantAdded: &feed.ParticipantAdded{
		Id:       p.Id,
		RoomId:   p.RoomId,
		UserName: p.UserName,
		Language: p.Language,
	}})
	return p, nil
}

func (r *fakeRepository) GetParticipantById(id string) (database.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return database.Participant{}, sql.ErrNoRows
	}
	return p, nil
}

func (r *fakeRepository) ListParticipants(roomId string) ([]database.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]database.Participant, 0)
	for _, p := range r.participants {
		if p.RoomId == roomId {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepository) DeleteParticipant(id string) error {
	r.mu.Lock()
	p, ok := r.participants[id]
	if ok {
		delete(r.participants, id)
	}
	r.mu.Unlock()

	if ok {
		r.feed.Publish(p.RoomId, feed.Event{ParticipantRemoved: &feed.ParticipantRemoved{
			Id:     p.Id,
			RoomId: p.RoomId,
		}})
	}
	return nil
}

func (r *fakeRepository) CreateMessage(params database.CreateMessageParams) (database.Message, error) {
	r.mu.Lock()
	msg := database.Message{
		Id:               params.Id,
		RoomId:           params.RoomId,
		SenderId:         params.SenderId,
		OriginalText:     params.OriginalText,
		OriginalLanguage: params.OriginalLanguage,
		CreatedAt:        time.Now().UTC(),
	}
	r.messages[msg.Id] = msg
	r.mu.Unlock()

	r.feed.Publish(msg.RoomId, feed.Event{MessageAdded: &feed.MessageAdded{
		Id:               msg.Id,
		RoomId:           msg.RoomId,
		SenderId:         msg.SenderId,
		OriginalText:     msg.OriginalText,
		OriginalLanguage: msg.OriginalLanguage,
		CreatedAt:        msg.CreatedAt,
	}})
	return msg, nil
}

func (r *fakeRepository) GetMessageById(id string) (database.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[id]
	if !ok {
		return database.Message{}, sql.ErrNoRows
	}
	return msg, nil
}

func (r *fakeRepository) GetMessageHistory(roomId string) ([]database.MessageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]database.MessageRecord, 0)
	for _, msg := range r.messages {
		if msg.RoomId != roomId {
			continue
		}

		rec := database.MessageRecord{Message: msg}
		if sender, ok := r.participants[msg.SenderId]; ok {
			rec.SenderName = sender.UserName
		}
		rec.Translations = append(rec.Translations, r.translations[msg.Id]...)
		out = append(out, rec)
	}

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeRepository) CreateTranslation(params database.CreateTranslationParams) (database.Translation, error) {
	r.mu.Lock()
	for _, t := range r.translations[params.MessageId] {
		if t.Language == params.Language {
			r.mu.Unlock()
			return database.Translation{}, sql.ErrNoRows
		}
	}

	r.nextTransId++
	t := database.Translation{
		Id:             r.nextTransId,
		MessageId:      params.MessageId,
		Language:       params.Language,
		TranslatedText: params.TranslatedText,
		CreatedAt:      time.Now().UTC(),
	}
	r.translations[t.MessageId] = append(r.translations[t.MessageId], t)
	r.mu.Unlock()

	r.feed.Publish("", feed.Event{TranslationAdded: &feed.TranslationAdded{
		MessageId:      t.MessageId,
		Language:       t.Language,
		TranslatedText: t.TranslatedText,
	}})
	return t, nil
}

func (r *fakeRepository) ListTranslations(messageId string) ([]database.Translation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]database.Translation(nil), r.translations[messageId]...), nil
}
