package core

import (
	"context"

	"github.com/geniumhq/genium-backend/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateAdminUser(ctx context.Context, user *models.AdminUser) error
	GetAdminUserByEmail(ctx context.Context, email string) (*models.AdminUser, error)

	GetBrokerByPhone(ctx context.Context, phoneNumber string) (*models.Broker, error)
	GetBroker(ctx context.Context, id string) (*models.Broker, error)
	ListBrokers(ctx context.Context) ([]models.Broker, error)
	CreateBroker(ctx context.Context, broker *models.Broker) error
	UpdateBrokerAuthorization(ctx context.Context, id string, authorized bool) error
	DeleteBroker(ctx context.Context, id string) error

	ListProperties(ctx context.Context) ([]models.Property, error)
	ListPropertiesByStatus(ctx context.Context, status string) ([]models.Property, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	SearchProperties(ctx context.Context, f PropertyFilter) ([]models.Property, error)
	GetCheapestProperty(ctx context.Context, status string, bedrooms *int) (*models.Property, error)
	UpdateProperty(ctx context.Context, id string, u PropertyUpdate) error
	SetPropertyEmbedding(ctx context.Context, id string, embedding []float32) error
	ListPropertiesMissingEmbedding(ctx context.Context) ([]models.Property, error)
	SearchPropertiesByVector(ctx context.Context, embedding []float32, limit int) ([]models.PropertyMatch, error)

	GetOrCreateConversation(ctx context.Context, brokerID, phoneNumber string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	AddMessage(ctx context.Context, msg *models.Message) error
	ListConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	ListRecentMessages(ctx context.Context, limit int) ([]models.Message, error)

	SeedDatabase(ctx context.Context) (properties int, brokers int, err error)

	Close() error
}

// PropertyFilter narrows a property search. Nil fields are ignored.
type PropertyFilter struct {
	MinPrice *int64
	MaxPrice *int64
	Bedrooms *int
	Status   *string
}

// PropertyUpdate carries the mutable property fields. Nil fields are left as-is.
type PropertyUpdate struct {
	Status      *string
	Price       *int64
	Description *string
}
