package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// WhatsAppSender delivers an outbound text to a phone number through a
// provider (Maytapi or Evolution API).
type WhatsAppSender interface {
	SendText(ctx context.Context, toNumber string, text string) error
}
