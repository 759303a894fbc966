package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, defaultModel, r.FormValue("model"))

		f, hdr, err := r.FormFile("file")
		assert.NoError(t, err)
		defer f.Close()
		assert.Equal(t, fileName, hdr.Filename)

		body, err := io.ReadAll(f)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x1a, 0x45, 0xdf, 0xa3}, body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "")
	text, err := c.Transcribe(context.Background(), []byte{0x1a, 0x45, 0xdf, 0xa3})

	assert.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestTranscribe_apiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad audio"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "")
	_, err := c.Transcribe(context.Background(), []byte("junk"))

	var terr *Error
	assert.ErrorAs(t, err, &terr, "expected a transcription error")
}

func TestTranscribe_transportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "test-key", "")
	_, err := c.Transcribe(context.Background(), []byte("junk"))

	var terr *Error
	assert.ErrorAs(t, err, &terr, "expected a transcription error")
}
