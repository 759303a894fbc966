package database

import "time"

type Room struct {
	Id        string
	Code      string
	CreatedBy string
	CreatedAt time.Time
}

type Participant struct {
	Id        string
	RoomId    string
	UserName  string
	Language  string
	CreatedAt time.Time
}

type Message struct {
	Id               string
	RoomId           string
	SenderId         string
	OriginalText     string
	OriginalLanguage string
	CreatedAt        time.Time
}

type Translation struct {
	Id             int
	MessageId      string
	Language       string
	TranslatedText string
	CreatedAt      time.Time
}

// MessageRecord is a message row joined with its sender's display name and
// all translations persisted so far, as returned by GetMessageHistory.
type MessageRecord struct {
	Message
	SenderName   string
	Translations []Translation
}

type CreateRoomParams struct {
	Id        string
	Code      string
	CreatedBy string
}

type CreateParticipantParams struct {
	Id       string
	RoomId   string
	UserName string
	Language string
}

type CreateMessageParams struct {
	Id               string
	RoomId           string
	SenderId         string
	OriginalText     string
	OriginalLanguage string
}

type CreateTranslationParams struct {
	MessageId      string
	Language       string
	TranslatedText string
}
