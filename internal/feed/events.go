package feed

import "time"

// Event is a single change-feed notification. Exactly one of the pointer
// fields is set.
type Event struct {
	ParticipantAdded   *ParticipantAdded   `json:"participant_added,omitempty"`
	ParticipantRemoved *ParticipantRemoved `json:"participant_removed,omitempty"`
	MessageAdded       *MessageAdded       `json:"message_added,omitempty"`
	TranslationAdded   *TranslationAdded   `json:"translation_added,omitempty"`
}

type ParticipantAdded struct {
	Id       string `json:"id"`
	RoomId   string `json:"room_id"`
	UserName string `json:"user_name"`
	Language string `json:"language"`
}

type ParticipantRemoved struct {
	Id     string `json:"id"`
	RoomId string `json:"room_id"`
}

// MessageAdded carries the raw inserted row. The consumer resolves the
// sender's name and any translations that were persisted before delivery.
type MessageAdded struct {
	Id               string    `json:"id"`
	RoomId           string    `json:"room_id"`
	SenderId         string    `json:"sender_id"`
	OriginalText     string    `json:"original_text"`
	OriginalLanguage string    `json:"original_language"`
	CreatedAt        time.Time `json:"created_at"`
}

// TranslationAdded is delivered unscoped; the consumer resolves the owning
// message's room and drops events for other rooms.
type TranslationAdded struct {
	MessageId      string `json:"message_id"`
	Language       string `json:"language"`
	TranslatedText string `json:"translated_text"`
}
