package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	AllowedOrigins []string
}

func NewConfig(serverAddr, databaseDSN, openAIBaseURL, openAIAPIKey, allowedOrigins string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if openAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}

	if openAIBaseURL == "" {
		openAIBaseURL = "https://api.openai.com"
	}
	if _, err := url.ParseRequestURI(openAIBaseURL); err != nil {
		return nil, fmt.Errorf("parse OpenAI base URL: %w", err)
	}

	origins := []string{"*"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		OpenAIBaseURL:  strings.TrimSuffix(openAIBaseURL, "/"),
		OpenAIAPIKey:   openAIAPIKey,
		AllowedOrigins: origins,
	}, nil
}
