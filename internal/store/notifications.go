package store

import (
	"babelroom/internal/types"
)

// Notification tells the view layer that session state changed. Exactly one
// of the pointer fields is set.
type Notification struct {
	ParticipantJoined *types.Participant `json:"participant_joined,omitempty"`
	ParticipantLeft   *ParticipantLeft   `json:"participant_left,omitempty"`
	MessageAdded      *types.Message     `json:"message_added,omitempty"`
	TranslationAdded  *TranslationAdded  `json:"translation_added,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// ParticipantLeft carries the refreshed participant set alongside the
// departed id, since removal is reconciled by re-fetching.
type ParticipantLeft struct {
	Id           string              `json:"id"`
	Participants []types.Participant `json:"participants"`
}

type TranslationAdded struct {
	MessageId      string `json:"message_id"`
	Language       string `json:"language"`
	TranslatedText string `json:"translated_text"`
}
