// Package agent answers customer questions with a Gemini model and runs
// interactive question sessions.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the model used when none is given.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAnswer is returned when the model produced no text.
var ErrNoAnswer = errors.New("no answer from the model")

// Gemini is a finassist.Answerer backed by a Gemini model.
type Gemini struct {
	ModelName string
	Config    *genai.GenerateContentConfig
	client    *genai.Client
}

// NewGemini creates a Gemini answerer using the Gemini API with the given
// key. An empty model means DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("cannot initialize Gemini's client: %w", err)
	}
	return New(client, model), nil
}

// New creates a Gemini answerer on an existing client.
func New(client *genai.Client, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		ModelName: model,
		Config:    &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)},
		client:    client,
	}
}

// Answer implements finassist.Answerer.
func (g *Gemini) Answer(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.ModelName, genai.Text(prompt), g.Config)
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.ModelName, err)
	}
	return text(resp)
}

// text concatenates the text parts of the first candidate.
func text(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoAnswer
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoAnswer
	}
	return b.String(), nil
}
