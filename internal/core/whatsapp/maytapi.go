package whatsapp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/geniumhq/genium-backend/internal/core"
)

// MaytapiSender delivers texts through the Maytapi WhatsApp API.
type MaytapiSender struct {
	productID string
	phoneID   string
	apiKey    string
	client    *http.Client
}

func NewMaytapiSender(productID, phoneID, apiKey string) *MaytapiSender {
	return &MaytapiSender{
		productID: productID,
		phoneID:   phoneID,
		apiKey:    apiKey,
		client:    newHTTPClient(),
	}
}

func (s *MaytapiSender) SendText(ctx context.Context, toNumber, text string) error {
	url := fmt.Sprintf("https://api.maytapi.com/api/%s/%s/sendMessage", s.productID, s.phoneID)

	payload := map[string]string{
		"to_number": toNumber,
		"message":   text,
		"type":      "text",
	}
	headers := map[string]string{"x-maytapi-key": s.apiKey}

	if err := postJSON(ctx, s.client, url, headers, payload); err != nil {
		return fmt.Errorf("maytapi send: %w", err)
	}
	return nil
}

var _ core.WhatsAppSender = (*MaytapiSender)(nil)
