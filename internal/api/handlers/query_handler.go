package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/geniumhq/genium-backend/internal/core/rag"
)

// QueryHandler exposes the pipeline directly for testing without WhatsApp.
type QueryHandler struct {
	pipeline *rag.Pipeline
}

func NewQueryHandler(pipeline *rag.Pipeline) *QueryHandler {
	return &QueryHandler{pipeline: pipeline}
}

type queryRequest struct {
	Query       string `json:"query"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h *QueryHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	if req.Query == "" || req.PhoneNumber == "" {
		http.Error(w, "missing query or phoneNumber", 400)
		return
	}

	result, err := h.pipeline.ProcessQuery(r.Context(), req.Query, req.PhoneNumber)
	if err != nil {
		log.Printf("test query failed: %v", err)
		http.Error(w, "internal server error", 500)
		return
	}

	json.NewEncoder(w).Encode(result)
}

// Health is the liveness endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"message": "Genium API is running"})
}
