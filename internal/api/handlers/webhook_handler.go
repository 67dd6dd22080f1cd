package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/core/rag"
)

type WebhookHandler struct {
	pipeline *rag.Pipeline
	sender   core.WhatsAppSender
}

func NewWebhookHandler(pipeline *rag.Pipeline, sender core.WhatsAppSender) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline, sender: sender}
}

type skippedResponse struct {
	Success bool `json:"success"`
	Skipped bool `json:"skipped"`
}

// HandleWhatsApp receives provider webhooks (Maytapi or Evolution API),
// normalizes the payload, runs the query pipeline and sends the answer back
// over WhatsApp. It always answers 200 so providers do not retry.
func (h *WebhookHandler) HandleWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	msg := parseWebhookPayload(raw)
	log.Printf("webhook received: provider=%s from=%s", msg.Provider, msg.PhoneNumber)

	if msg.FromMe {
		log.Println("skipping - outgoing message")
		json.NewEncoder(w).Encode(skippedResponse{Success: true, Skipped: true})
		return
	}
	if msg.PhoneNumber == "" || msg.Text == "" {
		log.Println("skipping - missing phone or text")
		json.NewEncoder(w).Encode(skippedResponse{Success: true, Skipped: true})
		return
	}

	phoneNumber := normalizePhoneNumber(msg.PhoneNumber)

	result, err := h.pipeline.ProcessQuery(ctx, msg.Text, phoneNumber)
	if err != nil {
		log.Printf("webhook query failed for %s: %v", phoneNumber, err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
		return
	}

	if result.Success && h.sender != nil {
		if err := h.sender.SendText(ctx, msg.PhoneNumber, result.Message); err != nil {
			// Delivery failure must not fail the webhook; the turn is already logged.
			log.Printf("WhatsApp send failed for %s: %v", phoneNumber, err)
		}
	} else if h.sender == nil {
		log.Println("WhatsApp API not configured - response not sent")
	}

	json.NewEncoder(w).Encode(result)
}
