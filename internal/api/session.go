package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"babelroom/internal/identity"
	"babelroom/internal/stats"
	"babelroom/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 8192

	sendBuffer = 256
)

// sessionCredentials is an identity.Store scoped to one socket. Join
// messages seed it so the store can resume a participant granted to the
// same client earlier.
type sessionCredentials struct {
	mu    sync.Mutex
	creds map[string]identity.Credentials
}

func newSessionCredentials() *sessionCredentials {
	return &sessionCredentials{creds: make(map[string]identity.Credentials)}
}

func (c *sessionCredentials) Lookup(roomCode string) (identity.Credentials, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	creds, ok := c.creds[roomCode]
	return creds, ok
}

func (c *sessionCredentials) Save(roomCode string, creds identity.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds[roomCode] = creds
	return nil
}

func (c *sessionCredentials) Remove(roomCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.creds, roomCode)
	return nil
}

// Session owns one websocket connection and the room store behind it.
type Session struct {
	id    string
	conn  *websocket.Conn
	store *store.RoomStore
	creds *sessionCredentials
	log   *log.Logger
	stats stats.Provider
	send  chan *ServerMessage
	stop  chan struct{}

	stopOnce sync.Once
}

func NewSession(conn *websocket.Conn, rs *store.RoomStore, creds *sessionCredentials,
	logger *log.Logger, sp stats.Provider) *Session {
	return &Session{
		id:    uuid.NewString(),
		conn:  conn,
		store: rs,
		creds: creds,
		log:   logger,
		stats: sp,
		send:  make(chan *ServerMessage, sendBuffer),
		stop:  make(chan struct{}),
	}
}

// Run serves the connection until the peer disconnects. The store's feed
// subscription is torn down on exit but the participant row is kept, so a
// reconnecting client can resume it.
func (s *Session) Run() {
	s.stats.Incr(stats.ActiveSessions)
	defer s.stats.Decr(stats.ActiveSessions)

	go s.writePump()
	go s.notifyPump()
	s.readPump()
}

func (s *Session) readPump() {
	defer func() {
		s.conn.Close()
		s.store.Shutdown()
		s.stopSession()
		s.log.Printf("session %s: read exiting", s.id)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Printf("session %s: read: %v", s.id, err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.log.Printf("session %s: parse message: %v", s.id, err)
			s.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		switch {
		case msg.Create != nil:
			s.createRoom(&msg)
		case msg.Join != nil:
			s.joinRoom(&msg)
		case msg.Leave != nil:
			s.leaveRoom(&msg)
		case msg.Publish != nil:
			s.publish(&msg)
		default:
			s.queueMessage(ErrInvalidMessage(msg.Id))
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.log.Printf("session %s: write exiting", s.id)
	}()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				s.log.Printf("session %s: serialize message: %v", s.id, err)
				continue
			}

			if !s.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

// notifyPump forwards room-store notifications to the peer as events.
func (s *Session) notifyPump() {
	for {
		select {
		case n := <-s.store.Notifications():
			ev := n
			s.queueMessage(&ServerMessage{
				BaseMessage: BaseMessage{Timestamp: Now()},
				Event:       &ev,
			})
		case <-s.stop:
			return
		}
	}
}

func (s *Session) createRoom(msg *ClientMessage) {
	roomCode, participantId, err := s.store.CreateRoom(msg.Create.UserName, msg.Create.Language)
	if err != nil {
		s.queueMessage(s.errorMessage(msg.Id, err))
		return
	}

	s.queueMessage(NoErrOK(msg.Id, map[string]any{
		"room_code":      roomCode,
		"participant_id": participantId,
	}))
}

func (s *Session) joinRoom(msg *ClientMessage) {
	if msg.Join.ParticipantId != "" {
		s.creds.Save(msg.Join.RoomCode, identity.Credentials{
			ParticipantId: msg.Join.ParticipantId,
			UserName:      msg.Join.UserName,
			Language:      msg.Join.Language,
		})
	}

	participantId, err := s.store.JoinRoom(msg.Join.RoomCode, msg.Join.UserName, msg.Join.Language)
	if err != nil {
		s.queueMessage(s.errorMessage(msg.Id, err))
		return
	}

	state := s.store.Snapshot()
	s.queueMessage(NoErrOK(msg.Id, map[string]any{
		"room_code":      msg.Join.RoomCode,
		"participant_id": participantId,
		"language":       state.Language,
		"participants":   state.Participants,
		"messages":       state.Messages,
	}))
}

func (s *Session) leaveRoom(msg *ClientMessage) {
	s.store.LeaveRoom()
	s.queueMessage(NoErrOK(msg.Id, nil))
}

// publish runs in its own goroutine since message persistence waits for
// the translation fan-out.
func (s *Session) publish(msg *ClientMessage) {
	go func() {
		if err := s.store.SendMessage(context.Background(), msg.Publish.Text); err != nil {
			s.queueMessage(s.errorMessage(msg.Id, err))
			return
		}
		s.queueMessage(&ServerMessage{
			BaseMessage: BaseMessage{Id: msg.Id, Timestamp: Now()},
			Response:    &Response{ResponseCode: http.StatusAccepted},
		})
	}()
}

func (s *Session) errorMessage(id int, err error) *ServerMessage {
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		return ErrRoomNotFound(id)
	case errors.Is(err, store.ErrUnsupportedLanguage):
		return ErrUnsupportedLanguage(id)
	case errors.Is(err, store.ErrNotInRoom):
		return ErrNotInRoom(id)
	default:
		s.log.Printf("session %s: %v", s.id, err)
		return ErrInternalError(id)
	}
}

func (s *Session) queueMessage(msg *ServerMessage) bool {
	select {
	case s.send <- msg:
	default:
		s.log.Printf("session %s: send channel full, dropping message", s.id)
		return false
	}

	return true
}

func (s *Session) sendMessage(msgType int, msg []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := s.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			s.log.Printf("session %s: write message: %s", s.id, err)
		}
		return false
	}

	return true
}

func (s *Session) stopSession() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}
