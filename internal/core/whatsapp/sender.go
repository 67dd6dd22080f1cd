package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/geniumhq/genium-backend/internal/config"
	"github.com/geniumhq/genium-backend/internal/core"
)

// NewSenderFromConfig picks the configured provider. Returns nil when no
// provider is configured; the webhook then logs answers instead of sending.
func NewSenderFromConfig(cfg *config.Config) core.WhatsAppSender {
	if cfg.WhatsAppAPIKey == "" {
		return nil
	}
	if cfg.WhatsAppProvider == "maytapi" {
		return NewMaytapiSender(cfg.MaytapiProductID, cfg.MaytapiPhoneID, cfg.WhatsAppAPIKey)
	}
	if cfg.WhatsAppAPIURL == "" {
		return nil
	}
	return NewEvolutionSender(cfg.WhatsAppAPIURL, cfg.EvolutionInstance, cfg.WhatsAppAPIKey)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}
