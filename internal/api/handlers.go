package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"babelroom/internal/languages"
	"babelroom/internal/store"
)

// maxClipSize bounds uploaded audio clips, matching the upstream
// speech-to-text API's limit.
const maxClipSize = 25 << 20

type TranscriptionResponse struct {
	Text string `json:"text"`
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *App) health(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *App) getLanguages(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, languages.All())
}

// transcribe accepts an audio clip as the multipart field "audio" and
// returns the recognized text.
func (s *App) transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxClipSize)
	if err := r.ParseMultipartForm(maxClipSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	clip, err := io.ReadAll(file)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if len(clip) == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), clip)
	if err != nil {
		s.log.Printf("transcribe: %v", err)
		errResp := NewBadGatewayError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, TranscriptionResponse{Text: text})
}

func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return s.originAllowed(r) },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("upgrade: %v", err)
		return
	}

	creds := newSessionCredentials()
	rs := store.NewRoomStore(s.repo, s.feed, s.translator, creds, s.log, s.stats)

	session := NewSession(conn, rs, creds, s.log, s.stats)
	s.log.Printf("session %s: connected from %s", session.id, r.RemoteAddr)
	session.Run()
}
