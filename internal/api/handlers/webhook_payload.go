package handlers

import (
	"encoding/json"
	"regexp"
	"strings"
)

// webhookMessage is the normalized form of a provider webhook payload.
type webhookMessage struct {
	Provider    string
	PhoneNumber string
	Text        string
	FromMe      bool
}

var jidSuffixPattern = regexp.MustCompile(`@.*$`)

// parseWebhookPayload detects the provider format (Maytapi vs Evolution API)
// and extracts the normalized (phone, text) pair. A zero PhoneNumber or Text
// means the payload carried nothing processable and should be skipped.
func parseWebhookPayload(raw []byte) webhookMessage {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return webhookMessage{Provider: "unknown"}
	}

	// MAYTAPI FORMAT
	if body["type"] == "message" || body["conversation"] != nil || body["user"] != nil {
		msg := webhookMessage{Provider: "maytapi"}

		user, _ := body["user"].(map[string]any)
		phone := stringField(user, "phone")
		if phone == "" {
			if conv, ok := body["conversation"].(string); ok {
				phone = strings.SplitN(conv, "@", 2)[0]
			}
		}
		if phone == "" {
			phone = strings.SplitN(stringField(user, "id"), "@", 2)[0]
		}
		// Clean phone number (remove any @ or .us suffixes)
		msg.PhoneNumber = strings.TrimSpace(jidSuffixPattern.ReplaceAllString(phone, ""))

		switch m := body["message"].(type) {
		case string:
			msg.Text = m
		case map[string]any:
			msg.Text = stringField(m, "text")
			if msg.Text == "" {
				if inner, ok := m["message"].(map[string]any); ok {
					msg.Text = stringField(inner, "text")
				}
			}
		}

		if body["fromMe"] == true || body["from_me"] == true {
			msg.FromMe = true
		}
		return msg
	}

	// EVOLUTION API FORMAT
	if body["event"] == "messages.upsert" || body["event"] == "message.received" {
		msg := webhookMessage{Provider: "evolution"}

		data, _ := body["data"].(map[string]any)
		message, ok := data["message"].(map[string]any)
		if !ok {
			message = data
		}

		key, _ := message["key"].(map[string]any)
		phone := stringField(key, "remoteJid")
		if phone == "" {
			phone = stringField(message, "from")
		}
		phone = strings.TrimSuffix(phone, "@s.whatsapp.net")
		msg.PhoneNumber = strings.SplitN(phone, "@", 2)[0]

		if inner, ok := message["message"].(map[string]any); ok {
			msg.Text = stringField(inner, "conversation")
			if msg.Text == "" {
				if ext, ok := inner["extendedTextMessage"].(map[string]any); ok {
					msg.Text = stringField(ext, "text")
				}
			}
			if msg.Text == "" {
				if img, ok := inner["imageMessage"].(map[string]any); ok {
					msg.Text = stringField(img, "caption")
				}
			}
		}
		if msg.Text == "" {
			msg.Text = stringField(message, "text")
		}
		return msg
	}

	return webhookMessage{Provider: "unknown"}
}

// normalizePhoneNumber prefixes "+" when missing.
func normalizePhoneNumber(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
