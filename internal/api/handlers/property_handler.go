package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/core/rag"
	"github.com/geniumhq/genium-backend/internal/models"
)

// PropertyHandler manages the unit inventory for the dashboard.
type PropertyHandler struct {
	dbclient core.DbClient
	pipeline *rag.Pipeline
}

func NewPropertyHandler(dbclient core.DbClient, pipeline *rag.Pipeline) *PropertyHandler {
	return &PropertyHandler{dbclient: dbclient, pipeline: pipeline}
}

func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	var (
		properties []models.Property
		err        error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		properties, err = h.dbclient.ListPropertiesByStatus(r.Context(), status)
	} else {
		properties, err = h.dbclient.ListProperties(r.Context())
	}
	if err != nil {
		http.Error(w, "failed to list properties", 500)
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	json.NewEncoder(w).Encode(properties)
}

func (h *PropertyHandler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	var filter core.PropertyFilter

	q := r.URL.Query()
	if v := q.Get("minPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MinPrice = &n
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MaxPrice = &n
		}
	}
	if v := q.Get("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Bedrooms = &n
		}
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}

	properties, err := h.dbclient.SearchProperties(r.Context(), filter)
	if err != nil {
		http.Error(w, "failed to search properties", 500)
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	json.NewEncoder(w).Encode(properties)
}

type updatePropertyRequest struct {
	Status      *string `json:"status"`
	Price       *int64  `json:"price"`
	Description *string `json:"description"`
}

func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	var req updatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}

	update := core.PropertyUpdate{Status: req.Status, Price: req.Price, Description: req.Description}
	if err := h.dbclient.UpdateProperty(r.Context(), propertyID, update); err != nil {
		http.Error(w, "property not found", 404)
		return
	}

	property, err := h.dbclient.GetProperty(r.Context(), propertyID)
	if err != nil || property == nil {
		http.Error(w, "property not found", 404)
		return
	}
	json.NewEncoder(w).Encode(property)
}

// GenerateEmbeddings backfills embedding vectors for units missing one.
func (h *PropertyHandler) GenerateEmbeddings(w http.ResponseWriter, r *http.Request) {
	stored, err := h.pipeline.GeneratePropertyEmbeddings(r.Context())
	if err != nil {
		log.Printf("embedding backfill failed: %v", err)
		http.Error(w, "embedding generation failed", 500)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"message":  "Embeddings generated successfully",
		"embedded": stored,
	})
}

// SeedDatabase loads the demo dataset when the properties table is empty.
func (h *PropertyHandler) SeedDatabase(w http.ResponseWriter, r *http.Request) {
	properties, brokers, err := h.dbclient.SeedDatabase(r.Context())
	if err != nil {
		log.Printf("seed failed: %v", err)
		http.Error(w, "seed failed", 500)
		return
	}
	if properties == 0 && brokers == 0 {
		json.NewEncoder(w).Encode(map[string]string{"message": "Database already seeded"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"message":         "Database seeded successfully",
		"propertiesCount": properties,
		"brokersCount":    brokers,
	})
}
