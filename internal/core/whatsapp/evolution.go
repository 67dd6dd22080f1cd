package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/geniumhq/genium-backend/internal/core"
)

// EvolutionSender delivers texts through an Evolution API instance.
type EvolutionSender struct {
	baseURL  string
	instance string
	apiKey   string
	client   *http.Client
}

func NewEvolutionSender(baseURL, instance, apiKey string) *EvolutionSender {
	return &EvolutionSender{
		baseURL:  strings.TrimRight(baseURL, "/"),
		instance: instance,
		apiKey:   apiKey,
		client:   newHTTPClient(),
	}
}

func (s *EvolutionSender) SendText(ctx context.Context, toNumber, text string) error {
	url := fmt.Sprintf("%s/message/sendText/%s", s.baseURL, s.instance)

	payload := map[string]any{
		"number": toNumber,
		"text":   text,
		"delay":  1000,
	}
	headers := map[string]string{"apikey": s.apiKey}

	if err := postJSON(ctx, s.client, url, headers, payload); err != nil {
		return fmt.Errorf("evolution send: %w", err)
	}
	return nil
}

var _ core.WhatsAppSender = (*EvolutionSender)(nil)
