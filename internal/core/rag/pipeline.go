package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/models"
)

const (
	unauthorizedMessage = "Unauthorized. Please contact support to authorize your number."

	insufficientInfoMessage = "I don't have enough information to answer that question accurately. Could you please rephrase or ask about specific unit types or pricing?"

	noUnitsMessage = "Sorry, no available units at the moment."

	systemPrompt = "You are a helpful real estate assistant. Provide concise, one-line answers to broker questions about properties. Be professional and direct."

	// Top match must score strictly above this for a grounded answer.
	similarityThreshold = 0.85

	searchLimit = 3
)

// Pipeline is the query-routing / response-composition core: authorize,
// classify, answer (deterministic or semantic), persist both turns.
type Pipeline struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
}

func NewPipeline(db core.DbClient, embedder core.EmbeddingProvider, llm core.LLMProvider) *Pipeline {
	return &Pipeline{db: db, embedder: embedder, llm: llm}
}

// QueryResult is the structured outcome of one processed query.
// Confidence is 1.0 for deterministic answers and the raw similarity score
// (or 0 below the gate) for semantic answers.
type QueryResult struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Confidence float64   `json:"confidence"`
	QueryType  QueryType `json:"queryType,omitempty"`
	PropertyID string    `json:"propertyId,omitempty"`
}

type answer struct {
	text       string
	confidence float64
	propertyID string
}

// ProcessQuery runs the full pipeline for one inbound broker message.
// Unauthorized senders get a rejection with nothing persisted. For
// authorized senders the answer is computed fully before either turn is
// written, so a conversation never ends up with a lone inbound message.
func (p *Pipeline) ProcessQuery(ctx context.Context, query, phoneNumber string) (QueryResult, error) {
	broker, err := p.db.GetBrokerByPhone(ctx, phoneNumber)
	if err != nil {
		return QueryResult{}, fmt.Errorf("broker lookup: %w", err)
	}
	if broker == nil || !broker.Authorized {
		return QueryResult{Success: false, Message: unauthorizedMessage}, nil
	}

	queryType := Classify(query)

	var ans answer
	switch queryType {
	case QueryCheapest:
		ans, err = p.answerCheapest(ctx, nil)
	case QueryCheapestWithBedrooms:
		bedrooms := ExtractBedroomCount(query)
		ans, err = p.answerCheapest(ctx, &bedrooms)
	default:
		ans, err = p.answerGeneral(ctx, query)
	}
	if err != nil {
		return QueryResult{}, err
	}

	conv, err := p.db.GetOrCreateConversation(ctx, broker.ID, phoneNumber)
	if err != nil {
		return QueryResult{}, fmt.Errorf("conversation lookup: %w", err)
	}

	inbound := &models.Message{
		ConversationID: conv.ID,
		BrokerID:       broker.ID,
		Direction:      models.DirectionInbound,
		Content:        query,
		QueryType:      string(queryType),
	}
	if err := p.db.AddMessage(ctx, inbound); err != nil {
		return QueryResult{}, fmt.Errorf("save inbound message: %w", err)
	}

	confidence := ans.confidence
	outbound := &models.Message{
		ConversationID: conv.ID,
		BrokerID:       broker.ID,
		Direction:      models.DirectionOutbound,
		Content:        ans.text,
		QueryType:      string(queryType),
		Confidence:     &confidence,
		PropertyID:     ans.propertyID,
	}
	if err := p.db.AddMessage(ctx, outbound); err != nil {
		return QueryResult{}, fmt.Errorf("save outbound message: %w", err)
	}

	return QueryResult{
		Success:    true,
		Message:    ans.text,
		Confidence: ans.confidence,
		QueryType:  queryType,
		PropertyID: ans.propertyID,
	}, nil
}

// answerCheapest resolves price queries deterministically. Confidence is
// always exactly 1.0, found or not.
func (p *Pipeline) answerCheapest(ctx context.Context, bedrooms *int) (answer, error) {
	property, err := p.db.GetCheapestProperty(ctx, models.StatusAvailable, bedrooms)
	if err != nil {
		return answer{}, fmt.Errorf("cheapest property lookup: %w", err)
	}

	if bedrooms == nil {
		if property == nil {
			return answer{text: noUnitsMessage, confidence: 1.0}, nil
		}
		return answer{
			text:       fmt.Sprintf("The most affordable unit is $%s - %d bedrooms.", formatPrice(property.Price), property.Bedrooms),
			confidence: 1.0,
			propertyID: property.ID,
		}, nil
	}

	if property == nil {
		return answer{
			text:       fmt.Sprintf("Sorry, no available %d-bedroom units at the moment.", *bedrooms),
			confidence: 1.0,
		}, nil
	}
	return answer{
		text:       fmt.Sprintf("The cheapest %d-bedroom unit is $%s.", *bedrooms, formatPrice(property.Price)),
		confidence: 1.0,
		propertyID: property.ID,
	}, nil
}

// answerGeneral embeds the query, runs a similarity search over available
// units and composes an LLM answer grounded in the top match when it clears
// the confidence gate.
func (p *Pipeline) answerGeneral(ctx context.Context, query string) (answer, error) {
	vecs, err := p.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return answer{}, fmt.Errorf("generate query embedding: %w", err)
	}
	if len(vecs) == 0 {
		return answer{}, fmt.Errorf("generate query embedding: empty result")
	}

	matches, err := p.db.SearchPropertiesByVector(ctx, vecs[0], searchLimit)
	if err != nil {
		return answer{}, fmt.Errorf("vector search: %w", err)
	}

	if len(matches) == 0 || matches[0].Score <= similarityThreshold {
		return answer{text: insufficientInfoMessage, confidence: 0}, nil
	}

	top := matches[0]
	return answer{
		text:       p.formatWithLLM(ctx, query, top.Property),
		confidence: top.Score,
		propertyID: top.ID,
	}, nil
}

// formatWithLLM asks the LLM for a one-line answer grounded in the property;
// on failure it falls back to a plain attribute listing so generation
// outages never fail the query.
func (p *Pipeline) formatWithLLM(ctx context.Context, query string, property models.Property) string {
	userPrompt := fmt.Sprintf(
		"Question: %s\n\nProperty: %s, %d bed, %d bath, %d sqft, $%d. %s\n\nProvide a brief, one-line answer.",
		query, property.UnitType, property.Bedrooms, property.Bathrooms, property.Sqft, property.Price, property.Description,
	)

	text, err := p.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("LLM formatting failed, using fallback: %v", err)
		}
		return fallbackAnswer(property)
	}
	return strings.TrimSpace(text)
}

func fallbackAnswer(p models.Property) string {
	return fmt.Sprintf("%s unit - %d bed, %d bath, %d sqft. Price: $%s. %s",
		p.UnitType, p.Bedrooms, p.Bathrooms, p.Sqft, formatPrice(p.Price), p.Description)
}

// formatPrice renders a price with thousands separators, e.g. 298000 -> "298,000".
func formatPrice(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
