// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package advisory

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/wneessen/skycast/internal/http"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini generates advice through the Google Gen AI SDK. A client is created per call, since
// the API key may change between calls.
type Gemini struct {
	model   string
	creds   CredentialProvider
	http    *http.Client
	baseURL string
}

func NewGemini(client *http.Client, creds CredentialProvider, model string) (*Gemini, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if creds == nil {
		return nil, errors.New("credential provider is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		model: model,
		creds: creds,
		http:  client,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	key, err := g.creds.APIKey(ctx)
	if err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.http.Client,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("%w: Gemini request failed: %w", ErrAdvisoryUnavailable, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: Gemini returned no text", ErrAdvisoryUnavailable)
	}
	return text, nil
}
