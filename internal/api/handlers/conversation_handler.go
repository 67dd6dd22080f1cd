package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/models"
)

// ConversationHandler serves conversation history to the dashboard.
type ConversationHandler struct {
	dbclient core.DbClient
}

func NewConversationHandler(dbclient core.DbClient) *ConversationHandler {
	return &ConversationHandler{dbclient: dbclient}
}

func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.dbclient.ListConversations(r.Context())
	if err != nil {
		http.Error(w, "failed to list conversations", 500)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	json.NewEncoder(w).Encode(conversations)
}

func (h *ConversationHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conv, err := h.dbclient.GetConversation(r.Context(), conversationID)
	if err != nil || conv == nil {
		http.Error(w, "conversation not found", 404)
		return
	}

	messages, err := h.dbclient.ListConversationMessages(r.Context(), conversationID)
	if err != nil {
		http.Error(w, "failed to list messages", 500)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}

// GetRecentMessages returns the latest messages across all conversations
// for the dashboard feed. Default limit is 50.
func (h *ConversationHandler) GetRecentMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.dbclient.ListRecentMessages(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list messages", 500)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}
