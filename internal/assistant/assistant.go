// Package assistant is a thin passthrough to a generative model for the
// bookkeeping chat helper. It streams model output chunk by chunk; no
// conversation state is kept server-side.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/sana-bookkeeping/internal/config"
)

const systemPrompt = "You are a bookkeeping assistant for small businesses in Kazakhstan. " +
	"Answer questions about invoices, receipts, bank statements, double-entry records " +
	"and the USN/OSN tax regimes. Be concise and practical. " +
	"If a question requires professional tax advice, say so instead of guessing."

// Chunk is one streamed piece of the assistant's reply
type Chunk struct {
	Text string
	Err  error
}

// Assistant streams chat completions from the model
type Assistant struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewAssistant creates the chat passthrough. Credentials come from the
// environment, same as the extraction adapter.
func NewAssistant(ctx context.Context, logger *slog.Logger, cfg *config.AssistantConfig) (*Assistant, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Assistant{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Stream sends the user's message to the model and returns a channel of
// reply chunks. The channel is closed when the reply is complete, the
// context is canceled, or an error chunk has been delivered.
func (a *Assistant) Stream(ctx context.Context, message string) <-chan Chunk {
	out := make(chan Chunk)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: message}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	go func() {
		defer close(out)

		for resp, err := range a.client.Models.GenerateContentStream(ctx, a.model, contents, cfg) {
			if err != nil {
				a.logger.Error("Assistant stream failed", "model", a.model, "error", err)
				select {
				case out <- Chunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			text := resp.Text()
			if text == "" {
				continue
			}

			select {
			case out <- Chunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
