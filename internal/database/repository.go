package database

type ChatRepository interface {
	Ping() error
	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomByCode(code string) (Room, error)
	CreateParticipant(params CreateParticipantParams) (Participant, error)
	GetParticipantById(id string) (Participant, error)
	ListParticipants(roomId string) ([]Participant, error)
	DeleteParticipant(id string) error
	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessageById(id string) (Message, error)
	GetMessageHistory(roomId string) ([]MessageRecord, error)
	CreateTranslation(params CreateTranslationParams) (Translation, error)
	ListTranslations(messageId string) ([]Translation, error)
}
