package types

import (
	"time"
)

type Room struct {
	Id        string    `json:"id"`
	Code      string    `json:"code"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Participant struct {
	Id       string `json:"id"`
	UserName string `json:"user_name"`
	Language string `json:"language"`
}

// Message is the client-visible projection of a message row joined with
// its sender's name and any translations that have arrived so far.
type Message struct {
	Id               string            `json:"id"`
	SenderId         string            `json:"sender_id"`
	SenderName       string            `json:"sender_name"`
	OriginalText     string            `json:"original_text"`
	OriginalLanguage string            `json:"original_language"`
	Translations     map[string]string `json:"translations"`
	CreatedAt        time.Time         `json:"created_at,omitempty"`
}

// TextFor renders the message for a reader of the given language: the
// original text when the language matches, otherwise the translation for
// that language if one has arrived.
func (m *Message) TextFor(language string) (string, bool) {
	if language == m.OriginalLanguage {
		return m.OriginalText, true
	}

	text, ok := m.Translations[language]
	return text, ok
}
