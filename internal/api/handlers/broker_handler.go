package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/models"
)

// BrokerHandler manages the authorized-broker registry for the dashboard.
type BrokerHandler struct {
	dbclient core.DbClient
}

func NewBrokerHandler(dbclient core.DbClient) *BrokerHandler {
	return &BrokerHandler{dbclient: dbclient}
}

func (h *BrokerHandler) ListBrokers(w http.ResponseWriter, r *http.Request) {
	brokers, err := h.dbclient.ListBrokers(r.Context())
	if err != nil {
		http.Error(w, "failed to list brokers", 500)
		return
	}
	if brokers == nil {
		brokers = []models.Broker{}
	}
	json.NewEncoder(w).Encode(brokers)
}

type createBrokerRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Authorized  bool   `json:"authorized"`
}

func (h *BrokerHandler) CreateBroker(w http.ResponseWriter, r *http.Request) {
	var req createBrokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	if req.PhoneNumber == "" || req.Name == "" {
		http.Error(w, "missing phoneNumber or name", 400)
		return
	}

	existing, err := h.dbclient.GetBrokerByPhone(r.Context(), req.PhoneNumber)
	if err != nil {
		http.Error(w, "failed to check broker", 500)
		return
	}
	if existing != nil {
		http.Error(w, "broker with this phone number already exists", 409)
		return
	}

	broker := &models.Broker{
		ID:          uuid.NewString(),
		PhoneNumber: req.PhoneNumber,
		Name:        req.Name,
		Email:       req.Email,
		Authorized:  req.Authorized,
		CreatedAt:   time.Now(),
	}
	if err := h.dbclient.CreateBroker(r.Context(), broker); err != nil {
		http.Error(w, "failed to create broker", 500)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(broker)
}

type updateBrokerAuthRequest struct {
	Authorized bool `json:"authorized"`
}

func (h *BrokerHandler) UpdateBrokerAuth(w http.ResponseWriter, r *http.Request) {
	brokerID := chi.URLParam(r, "brokerID")

	var req updateBrokerAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}

	if err := h.dbclient.UpdateBrokerAuthorization(r.Context(), brokerID, req.Authorized); err != nil {
		http.Error(w, "broker not found", 404)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"authorized": req.Authorized})
}

func (h *BrokerHandler) DeleteBroker(w http.ResponseWriter, r *http.Request) {
	brokerID := chi.URLParam(r, "brokerID")

	if err := h.dbclient.DeleteBroker(r.Context(), brokerID); err != nil {
		http.Error(w, "failed to delete broker", 500)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
