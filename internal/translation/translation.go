// Package translation wraps a hosted chat-completion API behind a small
// Translator interface.
package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"babelroom/internal/languages"
)

const (
	defaultModel   = "gpt-4.1-mini"
	defaultTimeout = 30 * time.Second

	// low temperature for deterministic output, generous token ceiling so
	// long messages are never truncated mid-translation
	temperature = 0.3
	maxTokens   = 16000

	systemPrompt = "You are a professional translator. Translate the following text to %s. " +
		"Only return the translated text without any additional information or comments."
)

// Translator converts a text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Error wraps any transport or API failure from the translation endpoint.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation: %s", e.Err)
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

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Translate issues one chat-completion request instructing the model to
// return only the translated text. The target language is rendered as its
// catalog display name so the prompt reads naturally.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPrompt, languages.Name(targetLanguage))},
			{Role: "user", Content: text},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var result chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(c.baseURL + "/v1/chat/completions")
	if err != nil {
		return "", &Error{Err: err}
	}
	if resp.IsError() {
		return "", &Error{Err: fmt.Errorf("%s: %s", resp.Status(), resp.String())}
	}

	if len(result.Choices) == 0 {
		return "", &Error{Err: fmt.Errorf("no choices returned")}
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
