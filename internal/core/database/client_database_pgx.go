package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/geniumhq/genium-backend/internal/config"
	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/models"
)

type DatabaseClient struct {
	db       *sql.DB
	embedDim int
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.EmbedDim <= 0 {
		return nil, fmt.Errorf("embed dimension must be positive, got %d", cfg.EmbedDim)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db, embedDim: cfg.EmbedDim}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for admin users

func (c *DatabaseClient) CreateAdminUser(ctx context.Context, user *models.AdminUser) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO admin_users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetAdminUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	const q = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM admin_users WHERE email = $1
	`
	var u models.AdminUser
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for brokers

func (c *DatabaseClient) GetBrokerByPhone(ctx context.Context, phoneNumber string) (*models.Broker, error) {
	const q = `
		SELECT id, phone_number, name, email, authorized, created_at
		FROM brokers WHERE phone_number = $1
	`
	var b models.Broker
	err := c.db.QueryRowContext(ctx, q, phoneNumber).Scan(
		&b.ID, &b.PhoneNumber, &b.Name, &b.Email, &b.Authorized, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *DatabaseClient) GetBroker(ctx context.Context, id string) (*models.Broker, error) {
	const q = `
		SELECT id, phone_number, name, email, authorized, created_at
		FROM brokers WHERE id = $1
	`
	var b models.Broker
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.PhoneNumber, &b.Name, &b.Email, &b.Authorized, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *DatabaseClient) ListBrokers(ctx context.Context) ([]models.Broker, error) {
	const q = `
		SELECT id, phone_number, name, email, authorized, created_at
		FROM brokers
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Broker
	for rows.Next() {
		var b models.Broker
		if err := rows.Scan(
			&b.ID, &b.PhoneNumber, &b.Name, &b.Email, &b.Authorized, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CreateBroker(ctx context.Context, broker *models.Broker) error {
	if broker == nil {
		return errors.New("nil broker")
	}
	const q = `
		INSERT INTO brokers (id, phone_number, name, email, authorized, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		broker.ID, broker.PhoneNumber, broker.Name, broker.Email, broker.Authorized, broker.CreatedAt)
	return err
}

func (c *DatabaseClient) UpdateBrokerAuthorization(ctx context.Context, id string, authorized bool) error {
	const q = `
		UPDATE brokers SET authorized = $2 WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, authorized)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("broker not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteBroker(ctx context.Context, id string) error {
	const q = `DELETE FROM brokers WHERE id = $1`
	_, err := c.db.ExecContext(ctx, q, id)
	return err
}

// Implementing the db interface for properties

const propertyColumns = `id, project_name, unit_type, bedrooms, bathrooms, sqft, price, floor, status, description, created_at`

func scanProperty(row interface{ Scan(...any) error }) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.ProjectName, &p.UnitType, &p.Bedrooms, &p.Bathrooms,
		&p.Sqft, &p.Price, &p.Floor, &p.Status, &p.Description, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *DatabaseClient) ListProperties(ctx context.Context) ([]models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties ORDER BY price ASC, id ASC`
	return c.queryProperties(ctx, q)
}

func (c *DatabaseClient) ListPropertiesByStatus(ctx context.Context, status string) ([]models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE status = $1 ORDER BY price ASC, id ASC`
	return c.queryProperties(ctx, q, status)
}

func (c *DatabaseClient) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(c.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *DatabaseClient) SearchProperties(ctx context.Context, f core.PropertyFilter) ([]models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE 1=1`
	args := []any{}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		q += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		q += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	if f.Bedrooms != nil {
		args = append(args, *f.Bedrooms)
		q += fmt.Sprintf(" AND bedrooms = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	q += " ORDER BY price ASC, id ASC"
	return c.queryProperties(ctx, q, args...)
}

// GetCheapestProperty returns the lowest-priced unit with the given status,
// optionally filtered to an exact bedroom count. Ties break on lowest id.
func (c *DatabaseClient) GetCheapestProperty(ctx context.Context, status string, bedrooms *int) (*models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE status = $1`
	args := []any{status}
	if bedrooms != nil {
		args = append(args, *bedrooms)
		q += " AND bedrooms = $2"
	}
	q += " ORDER BY price ASC, id ASC LIMIT 1"

	p, err := scanProperty(c.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *DatabaseClient) UpdateProperty(ctx context.Context, id string, u core.PropertyUpdate) error {
	q := `UPDATE properties SET id = id`
	args := []any{id}
	if u.Status != nil {
		args = append(args, *u.Status)
		q += fmt.Sprintf(", status = $%d", len(args))
	}
	if u.Price != nil {
		args = append(args, *u.Price)
		q += fmt.Sprintf(", price = $%d", len(args))
	}
	if u.Description != nil {
		args = append(args, *u.Description)
		q += fmt.Sprintf(", description = $%d", len(args))
	}
	q += " WHERE id = $1"

	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("property not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) SetPropertyEmbedding(ctx context.Context, id string, embedding []float32) error {
	if err := c.checkEmbedDim(embedding); err != nil {
		return err
	}
	const q = `UPDATE properties SET embedding = $2 WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id, pgvector.NewVector(embedding))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("property not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) ListPropertiesMissingEmbedding(ctx context.Context) ([]models.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE embedding IS NULL ORDER BY id ASC`
	return c.queryProperties(ctx, q)
}

// SearchPropertiesByVector finds the top-k available units by cosine
// similarity to the query embedding. Score is 1 - cosine distance.
func (c *DatabaseClient) SearchPropertiesByVector(ctx context.Context, embedding []float32, limit int) ([]models.PropertyMatch, error) {
	if err := c.checkEmbedDim(embedding); err != nil {
		return nil, err
	}
	q := `
		SELECT ` + propertyColumns + `, 1 - (embedding <=> $1) AS score
		FROM properties
		WHERE status = 'available' AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	vec := pgvector.NewVector(embedding)
	rows, err := c.db.QueryContext(ctx, q, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PropertyMatch
	for rows.Next() {
		var m models.PropertyMatch
		if err := rows.Scan(
			&m.ID, &m.ProjectName, &m.UnitType, &m.Bedrooms, &m.Bathrooms,
			&m.Sqft, &m.Price, &m.Floor, &m.Status, &m.Description, &m.CreatedAt,
			&m.Score,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) queryProperties(ctx context.Context, q string, args ...any) ([]models.Property, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Implementing the db interface for conversations and messages

// GetOrCreateConversation returns the broker's conversation, creating it on
// first use and refreshing last_message_at on subsequent use.
func (c *DatabaseClient) GetOrCreateConversation(ctx context.Context, brokerID, phoneNumber string) (*models.Conversation, error) {
	const sel = `
		SELECT id, broker_id, phone_number, started_at, last_message_at, message_count
		FROM conversations WHERE broker_id = $1
		ORDER BY started_at ASC LIMIT 1
	`
	var conv models.Conversation
	err := c.db.QueryRowContext(ctx, sel, brokerID).Scan(
		&conv.ID, &conv.BrokerID, &conv.PhoneNumber, &conv.StartedAt, &conv.LastMessageAt, &conv.MessageCount,
	)
	if err == nil {
		const touch = `UPDATE conversations SET last_message_at = now() WHERE id = $1`
		if _, err := c.db.ExecContext(ctx, touch, conv.ID); err != nil {
			return nil, err
		}
		return &conv, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	const ins = `
		INSERT INTO conversations (id, broker_id, phone_number, started_at, last_message_at, message_count)
		VALUES ($1, $2, $3, now(), now(), 0)
		RETURNING id, broker_id, phone_number, started_at, last_message_at, message_count
	`
	err = c.db.QueryRowContext(ctx, ins, newID(), brokerID, phoneNumber).Scan(
		&conv.ID, &conv.BrokerID, &conv.PhoneNumber, &conv.StartedAt, &conv.LastMessageAt, &conv.MessageCount,
	)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *DatabaseClient) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	const q = `
		SELECT id, broker_id, phone_number, started_at, last_message_at, message_count
		FROM conversations WHERE id = $1
	`
	var conv models.Conversation
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&conv.ID, &conv.BrokerID, &conv.PhoneNumber, &conv.StartedAt, &conv.LastMessageAt, &conv.MessageCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *DatabaseClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	const q = `
		SELECT c.id, c.broker_id, c.phone_number, c.started_at, c.last_message_at, c.message_count,
		       COALESCE(b.name, 'Unknown')
		FROM conversations c
		LEFT JOIN brokers b ON b.id = c.broker_id
		ORDER BY c.last_message_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.BrokerID, &conv.PhoneNumber, &conv.StartedAt, &conv.LastMessageAt, &conv.MessageCount,
			&conv.BrokerName,
		); err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

// AddMessage inserts one turn and bumps the conversation counter in a single
// transaction. It is the sole mutator of message_count.
func (c *DatabaseClient) AddMessage(ctx context.Context, msg *models.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const ins = `
		INSERT INTO messages
			(id, conversation_id, broker_id, direction, content, timestamp, query_type, confidence, property_id)
		VALUES ($1, $2, $3, $4, $5, now(), $6, $7, $8)
	`
	var propertyID any
	if msg.PropertyID != "" {
		propertyID = msg.PropertyID
	}
	if msg.ID == "" {
		msg.ID = newID()
	}
	if _, err := tx.ExecContext(ctx, ins,
		msg.ID, msg.ConversationID, msg.BrokerID, msg.Direction, msg.Content,
		nullString(msg.QueryType), msg.Confidence, propertyID,
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	const bump = `
		UPDATE conversations
		SET message_count = message_count + 1, last_message_at = now()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, bump, msg.ConversationID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) ListConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	const q = `
		SELECT id, conversation_id, broker_id, direction, content, timestamp, query_type, confidence, property_id
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp ASC
	`
	return c.queryMessages(ctx, q, conversationID)
}

func (c *DatabaseClient) ListRecentMessages(ctx context.Context, limit int) ([]models.Message, error) {
	const q = `
		SELECT m.id, m.conversation_id, m.broker_id, m.direction, m.content, m.timestamp,
		       m.query_type, m.confidence, m.property_id, COALESCE(b.name, 'Unknown')
		FROM messages m
		LEFT JOIN brokers b ON b.id = m.broker_id
		ORDER BY m.timestamp DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var (
			m          models.Message
			queryType  sql.NullString
			confidence sql.NullFloat64
			propertyID sql.NullString
		)
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.BrokerID, &m.Direction, &m.Content, &m.Timestamp,
			&queryType, &confidence, &propertyID, &m.BrokerName,
		); err != nil {
			return nil, err
		}
		m.QueryType = queryType.String
		if confidence.Valid {
			m.Confidence = &confidence.Float64
		}
		m.PropertyID = propertyID.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) queryMessages(ctx context.Context, q string, args ...any) ([]models.Message, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var (
			m          models.Message
			queryType  sql.NullString
			confidence sql.NullFloat64
			propertyID sql.NullString
		)
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.BrokerID, &m.Direction, &m.Content, &m.Timestamp,
			&queryType, &confidence, &propertyID,
		); err != nil {
			return nil, err
		}
		m.QueryType = queryType.String
		if confidence.Valid {
			m.Confidence = &confidence.Float64
		}
		m.PropertyID = propertyID.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// checkEmbedDim rejects vectors that do not match the embedding column,
// turning a cryptic pgvector error into a clear one.
func (c *DatabaseClient) checkEmbedDim(embedding []float32) error {
	if len(embedding) != c.embedDim {
		return fmt.Errorf("embedding has %d dimensions, column expects %d", len(embedding), c.embedDim)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
