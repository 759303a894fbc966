package api

import (
	"net/http"
	"time"

	"babelroom/internal/store"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Create  *Create  `json:"create,omitempty"`
	Join    *Join    `json:"join,omitempty"`
	Leave   *Leave   `json:"leave,omitempty"`
	Publish *Publish `json:"publish,omitempty"`
}

type Create struct {
	UserName string `json:"user_name"`
	Language string `json:"language"`
}

// Join resolves a room by code. ParticipantId optionally resumes an
// identity granted by an earlier create or join on the same code.
type Join struct {
	RoomCode      string `json:"room_code"`
	UserName      string `json:"user_name"`
	Language      string `json:"language"`
	ParticipantId string `json:"participant_id,omitempty"`
}

type Leave struct{}

type Publish struct {
	Text string `json:"text"`
}

type ServerMessage struct {
	BaseMessage
	Response *Response           `json:"response,omitempty"`
	Event    *store.Notification `json:"event,omitempty"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

func Now() time.Time {
	return time.Now().UTC()
}

func NoErrOK(id int, data map[string]any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message",
		},
	}
}

func ErrRoomNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        store.ErrRoomNotFound.Error(),
		},
	}
}

func ErrUnsupportedLanguage(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        store.ErrUnsupportedLanguage.Error(),
		},
	}
}

func ErrNotInRoom(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusConflict,
			Error:        store.ErrNotInRoom.Error(),
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal error",
		},
	}
}
