package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) GetRoomByCode(code string) (Room, error) {
	args := m.Called(code)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) CreateParticipant(params CreateParticipantParams) (Participant, error) {
	args := m.Called(params)
	return args.Get(0).(Participant), args.Error(1)
}
func (m *MockChatRepository) GetParticipantById(id string) (Participant, error) {
	args := m.Called(id)
	return args.Get(0).(Participant), args.Error(1)
}
func (m *MockChatRepository) ListParticipants(roomId string) ([]Participant, error) {
	args := m.Called(roomId)
	return args.Get(0).([]Participant), args.Error(1)
}
func (m *MockChatRepository) DeleteParticipant(id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetMessageById(id string) (Message, error) {
	args := m.Called(id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetMessageHistory(roomId string) ([]MessageRecord, error) {
	args := m.Called(roomId)
	return args.Get(0).([]MessageRecord), args.Error(1)
}
func (m *MockChatRepository) CreateTranslation(params CreateTranslationParams) (Translation, error) {
	args := m.Called(params)
	return args.Get(0).(Translation), args.Error(1)
}
func (m *MockChatRepository) ListTranslations(messageId string) ([]Translation, error) {
	args := m.Called(messageId)
	return args.Get(0).([]Translation), args.Error(1)
}
