// Package transcription wraps a hosted speech-to-text API behind a small
// Transcriber interface.
package transcription

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultModel   = "whisper-1"
	defaultTimeout = 60 * time.Second

	fileName = "recording.webm"
)

// Transcriber converts a recorded audio clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip []byte) (string, error)
}

// Error wraps any transport or API failure from the speech-to-text
// endpoint.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription: %s", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *resty.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    resty.New().SetTimeout(defaultTimeout),
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe submits the clip as a file-like multipart payload and returns
// the recognized text.
func (c *Client) Transcribe(ctx context.Context, clip []byte) (string, error) {
	var result transcriptionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetFileReader("file", fileName, bytes.NewReader(clip)).
		SetFormData(map[string]string{"model": c.model}).
		SetResult(&result).
		Post(c.baseURL + "/v1/audio/transcriptions")
	if err != nil {
		return "", &Error{Err: err}
	}
	if resp.IsError() {
		return "", &Error{Err: fmt.Errorf("%s: %s", resp.Status(), resp.String())}
	}

	return result.Text, nil
}
