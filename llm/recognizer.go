// Package llm provides an optional, off-by-default decodex.MLRecognizer
// backed by an OpenAI-compatible chat completion API. It is never part of
// the mandatory recognition cascade; the orchestrator only calls it after
// every cheaper stage has declined, and only while its Budget allows.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vantyr/decodex"
)

const systemPrompt = "You judge whether a string is meaningful, readable plaintext (English prose, a URL, code, a flag, or similar) as opposed to noise, ciphertext, or partially-decoded garbage. Reply with exactly one word: YES or NO."

// Recognizer is a decodex.MLRecognizer that asks a chat completion model to
// judge whether a candidate string is plaintext.
type Recognizer struct {
	client *openai.Client
	model  string
	budget int
}

// New builds a Recognizer using apiKey and model (e.g. "gpt-4o-mini"),
// consulted at most budget times by the Orchestrator it is configured on,
// over that Orchestrator's lifetime.
func New(apiKey, model string, budget int) *Recognizer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if budget <= 0 {
		budget = 5
	}
	return &Recognizer{client: openai.NewClient(apiKey), model: model, budget: budget}
}

// Name implements decodex.Recognizer.
func (r *Recognizer) Name() string { return "llm" }

// Budget implements decodex.MLRecognizer.
func (r *Recognizer) Budget() int { return r.budget }

// Recognize implements decodex.Recognizer, asking the configured model
// whether text looks like plaintext.
func (r *Recognizer) Recognize(ctx context.Context, text string) (decodex.RecognitionResult, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens: 4,
	})
	if err != nil {
		return decodex.RecognitionResult{}, fmt.Errorf("decodex: llm recognizer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return decodex.RecognitionResult{}, fmt.Errorf("decodex: llm recognizer: no choices returned")
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	confirmed := strings.HasPrefix(answer, "YES")
	return decodex.RecognitionResult{
		Confirmed:  confirmed,
		Name:       r.Name(),
		Confidence: confidenceFor(confirmed),
		Reason:     "llm judgment: " + answer,
	}, nil
}

func confidenceFor(confirmed bool) float64 {
	if confirmed {
		return 0.75
	}
	return 0
}

var (
	_ decodex.Recognizer   = (*Recognizer)(nil)
	_ decodex.MLRecognizer = (*Recognizer)(nil)
)
