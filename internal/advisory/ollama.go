// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/skycast/internal/http"
)

// Ollama generates advice through a local Ollama server.
type Ollama struct {
	baseURL string
	model   string
	http    *http.Client
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ChatResponse struct {
	Model     string  `json:"model"`
	CreatedAt string  `json:"created_at"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`
	Error     string  `json:"error,omitempty"`
}

func NewOllama(client *http.Client, baseURL, model string) (*Ollama, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if baseURL == "" || model == "" {
		return nil, errors.New("ollama URL and model are required")
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    client,
	}, nil
}

func (o *Ollama) Name() string {
	return "ollama"
}

func (o *Ollama) Generate(ctx context.Context, system, prompt string) (string, error) {
	payload := ChatRequest{
		Model: o.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp ChatResponse
	code, err := o.http.Post(ctx, o.baseURL+"/api/chat", &resp, bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return "", fmt.Errorf("%w: ollama request failed: %w", ErrAdvisoryUnavailable, err)
	}
	if code != 200 {
		return "", fmt.Errorf("%w: ollama error (status %d): %s", ErrAdvisoryUnavailable, code, resp.Error)
	}
	return resp.Message.Content, nil
}
