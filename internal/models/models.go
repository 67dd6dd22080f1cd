package models

import (
	"time"
)

// AdminUser represents a dashboard operator account.
type AdminUser struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Broker is a WhatsApp sender allowed (or not) to query the assistant.
type Broker struct {
	ID          string    `db:"id" json:"id"`
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"` // Format: +1234567890
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email,omitempty"`
	Authorized  bool      `db:"authorized" json:"authorized"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Property statuses. Only available units participate in answering.
const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusSold      = "sold"
)

// Property represents one real-estate unit.
type Property struct {
	ID          string    `db:"id" json:"id"`
	ProjectName string    `db:"project_name" json:"projectName"`
	UnitType    string    `db:"unit_type" json:"unitType"` // e.g. "2BR", "3BR", "Studio"
	Bedrooms    int       `db:"bedrooms" json:"bedrooms"`
	Bathrooms   int       `db:"bathrooms" json:"bathrooms"`
	Sqft        int       `db:"sqft" json:"sqft"`
	Price       int64     `db:"price" json:"price"`
	Floor       int       `db:"floor" json:"floor,omitempty"`
	Status      string    `db:"status" json:"status"` // available | reserved | sold
	Description string    `db:"description" json:"description"`
	Embedding   []float32 `db:"embedding" json:"-"` // pgvector column, optional
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// PropertyMatch pairs a property with its similarity score from vector search.
type PropertyMatch struct {
	Property
	Score float64 `json:"score"`
}

// Conversation accumulates message history per broker, created lazily on
// the broker's first query.
type Conversation struct {
	ID            string    `db:"id" json:"id"`
	BrokerID      string    `db:"broker_id" json:"brokerId"`
	BrokerName    string    `db:"-" json:"brokerName,omitempty"`
	PhoneNumber   string    `db:"phone_number" json:"phoneNumber"`
	StartedAt     time.Time `db:"started_at" json:"startedAt"`
	LastMessageAt time.Time `db:"last_message_at" json:"lastMessageAt"`
	MessageCount  int       `db:"message_count" json:"messageCount"`
}

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one inbound or outbound turn within a conversation.
// Confidence and PropertyID are set on outbound turns only.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversationId"`
	BrokerID       string    `db:"broker_id" json:"brokerId"`
	BrokerName     string    `db:"-" json:"brokerName,omitempty"`
	Direction      string    `db:"direction" json:"direction"` // inbound | outbound
	Content        string    `db:"content" json:"content"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
	QueryType      string    `db:"query_type" json:"queryType,omitempty"`
	Confidence     *float64  `db:"confidence" json:"confidence,omitempty"`
	PropertyID     string    `db:"property_id" json:"propertyId,omitempty"`
}
