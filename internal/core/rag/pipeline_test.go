package rag

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/models"
)

// fakeDB implements the subset of core.DbClient the pipeline touches;
// anything else panics via the embedded nil interface.
type fakeDB struct {
	core.DbClient

	brokers    map[string]*models.Broker
	properties []models.Property
	matches    []models.PropertyMatch
	searchErr  error

	conversation *models.Conversation
	messages     []models.Message
	addErr       error

	missingEmbedding []models.Property
	storedEmbeddings map[string][]float32
	setEmbeddingErr  map[string]error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		brokers:          map[string]*models.Broker{},
		storedEmbeddings: map[string][]float32{},
		setEmbeddingErr:  map[string]error{},
	}
}

func (f *fakeDB) GetBrokerByPhone(_ context.Context, phone string) (*models.Broker, error) {
	return f.brokers[phone], nil
}

func (f *fakeDB) GetCheapestProperty(_ context.Context, status string, bedrooms *int) (*models.Property, error) {
	var candidates []models.Property
	for _, p := range f.properties {
		if p.Status != status {
			continue
		}
		if bedrooms != nil && p.Bedrooms != *bedrooms {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Price != candidates[j].Price {
			return candidates[i].Price < candidates[j].Price
		}
		return candidates[i].ID < candidates[j].ID
	})
	return &candidates[0], nil
}

func (f *fakeDB) SearchPropertiesByVector(_ context.Context, _ []float32, _ int) ([]models.PropertyMatch, error) {
	return f.matches, f.searchErr
}

func (f *fakeDB) GetOrCreateConversation(_ context.Context, brokerID, phoneNumber string) (*models.Conversation, error) {
	if f.conversation == nil {
		f.conversation = &models.Conversation{ID: "conv-1", BrokerID: brokerID, PhoneNumber: phoneNumber}
	}
	return f.conversation, nil
}

func (f *fakeDB) AddMessage(_ context.Context, msg *models.Message) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.messages = append(f.messages, *msg)
	f.conversation.MessageCount++
	return nil
}

func (f *fakeDB) ListPropertiesMissingEmbedding(_ context.Context) ([]models.Property, error) {
	return f.missingEmbedding, nil
}

func (f *fakeDB) SetPropertyEmbedding(_ context.Context, id string, embedding []float32) error {
	if err := f.setEmbeddingErr[id]; err != nil {
		return err
	}
	f.storedEmbeddings[id] = embedding
	return nil
}

type fakeEmbedder struct {
	vecs     [][]float32
	err      error
	captured []string
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.captured = texts
	if f.err != nil {
		return nil, f.err
	}
	if f.vecs != nil {
		return f.vecs, nil
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeLLM struct {
	text           string
	err            error
	calls          int
	capturedSystem string
	capturedUser   string
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.capturedSystem = systemPrompt
	f.capturedUser = userPrompt
	return f.text, f.err
}

func authorizedBroker() *models.Broker {
	return &models.Broker{ID: "broker-1", PhoneNumber: "+1234567890", Name: "John Smith", Authorized: true}
}

func demoUnits() []models.Property {
	return []models.Property{
		{ID: "p1", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2, Sqft: 1200, Price: 298000, Status: models.StatusAvailable},
		{ID: "p2", UnitType: "3BR", Bedrooms: 3, Bathrooms: 2, Sqft: 1500, Price: 425000, Status: models.StatusAvailable},
	}
}

func TestProcessQuery_Cheapest(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = demoUnits()
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "What is the cheapest residential unit available?", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, QueryCheapest, result.QueryType)
	require.Equal(t, 1.0, result.Confidence)
	require.Equal(t, "p1", result.PropertyID)
	require.Equal(t, "The most affordable unit is $298,000 - 2 bedrooms.", result.Message)
}

func TestProcessQuery_CheapestWithBedrooms(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = demoUnits()
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "Show me the most affordable 2 bedroom unit", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, QueryCheapestWithBedrooms, result.QueryType)
	require.Equal(t, 1.0, result.Confidence)
	require.Equal(t, "p1", result.PropertyID)
	require.Equal(t, "The cheapest 2-bedroom unit is $298,000.", result.Message)
}

func TestProcessQuery_CheapestTieBreaksOnLowestID(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = []models.Property{
		{ID: "p9", UnitType: "1BR", Bedrooms: 1, Price: 200000, Status: models.StatusAvailable},
		{ID: "p2", UnitType: "1BR", Bedrooms: 1, Price: 200000, Status: models.StatusAvailable},
	}
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "cheapest unit", "+1234567890")
	require.NoError(t, err)
	require.Equal(t, "p2", result.PropertyID)
}

func TestProcessQuery_NoAvailableUnits(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = []models.Property{
		{ID: "p1", UnitType: "2BR", Bedrooms: 2, Price: 298000, Status: models.StatusSold},
	}
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "cheapest unit available", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Sorry, no available units at the moment.", result.Message)
	require.Equal(t, 1.0, result.Confidence)
	require.Empty(t, result.PropertyID)
}

func TestProcessQuery_NoBedroomMatchIncludesCount(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = demoUnits()
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "cheapest 5 bedroom unit", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Sorry, no available 5-bedroom units at the moment.", result.Message)
	require.Equal(t, 1.0, result.Confidence)
}

func TestProcessQuery_Unauthorized(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = &models.Broker{ID: "broker-1", Authorized: false}
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "cheapest unit", "+1234567890")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "Unauthorized. Please contact support to authorize your number.", result.Message)
	require.Nil(t, db.conversation)
	require.Empty(t, db.messages)
}

func TestProcessQuery_UnknownSender(t *testing.T) {
	db := newFakeDB()
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "anything", "+555")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Empty(t, db.messages)
}

func TestProcessQuery_PersistsBothTurns(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = demoUnits()
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	_, err := p.ProcessQuery(context.Background(), "cheapest unit", "+1234567890")
	require.NoError(t, err)

	require.Len(t, db.messages, 2)
	require.Equal(t, 2, db.conversation.MessageCount)

	inbound := db.messages[0]
	require.Equal(t, models.DirectionInbound, inbound.Direction)
	require.Equal(t, "cheapest unit", inbound.Content)
	require.Equal(t, string(QueryCheapest), inbound.QueryType)
	require.Nil(t, inbound.Confidence)

	outbound := db.messages[1]
	require.Equal(t, models.DirectionOutbound, outbound.Direction)
	require.Equal(t, string(QueryCheapest), outbound.QueryType)
	require.NotNil(t, outbound.Confidence)
	require.Equal(t, 1.0, *outbound.Confidence)
	require.Equal(t, "p1", outbound.PropertyID)
}

func TestProcessQuery_GeneralLowScore(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.matches = []models.PropertyMatch{
		{Property: models.Property{ID: "p1", UnitType: "2BR"}, Score: 0.6},
	}
	llm := &fakeLLM{text: "should not be used"}
	p := NewPipeline(db, &fakeEmbedder{}, llm)

	result, err := p.ProcessQuery(context.Background(), "tell me about the neighborhood", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0.0, result.Confidence)
	require.Equal(t, "I don't have enough information to answer that question accurately. Could you please rephrase or ask about specific unit types or pricing?", result.Message)
	require.Empty(t, result.PropertyID)
	require.Zero(t, llm.calls)
}

func TestProcessQuery_GeneralScoreAtThresholdIsRejected(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.matches = []models.PropertyMatch{
		{Property: models.Property{ID: "p1"}, Score: 0.85},
	}
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	result, err := p.ProcessQuery(context.Background(), "any two bedroom units with views?", "+1234567890")
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Confidence)
	require.Empty(t, result.PropertyID)
}

func TestProcessQuery_GeneralHighScoreUsesLLM(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.matches = []models.PropertyMatch{
		{Property: models.Property{ID: "p1", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2, Sqft: 1200, Price: 298000, Description: "City views."}, Score: 0.92},
		{Property: models.Property{ID: "p2", UnitType: "3BR"}, Score: 0.80},
	}
	llm := &fakeLLM{text: "Yes, the 2BR at $298,000 has city views."}
	p := NewPipeline(db, &fakeEmbedder{}, llm)

	result, err := p.ProcessQuery(context.Background(), "any two bedroom units with views?", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0.92, result.Confidence)
	require.Equal(t, "p1", result.PropertyID)
	require.Equal(t, "Yes, the 2BR at $298,000 has city views.", result.Message)

	require.Equal(t, 1, llm.calls)
	require.Contains(t, llm.capturedSystem, "real estate assistant")
	require.Contains(t, llm.capturedUser, "any two bedroom units with views?")
	require.Contains(t, llm.capturedUser, "2BR, 2 bed, 2 bath, 1200 sqft")
}

func TestProcessQuery_GeneralLLMFailureFallsBackToTemplate(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.matches = []models.PropertyMatch{
		{Property: models.Property{ID: "p1", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2, Sqft: 1200, Price: 298000, Description: "City views."}, Score: 0.9},
	}
	llm := &fakeLLM{err: errors.New("llm unavailable")}
	p := NewPipeline(db, &fakeEmbedder{}, llm)

	result, err := p.ProcessQuery(context.Background(), "any units with views?", "+1234567890")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0.9, result.Confidence)
	require.Equal(t, "2BR unit - 2 bed, 2 bath, 1200 sqft. Price: $298,000. City views.", result.Message)
}

func TestProcessQuery_EmbeddingFailureAborts(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	p := NewPipeline(db, &fakeEmbedder{err: errors.New("embedding down")}, &fakeLLM{})

	_, err := p.ProcessQuery(context.Background(), "tell me about amenities", "+1234567890")
	require.Error(t, err)
	require.Empty(t, db.messages)
}

func TestProcessQuery_SearchFailureAborts(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.searchErr = errors.New("search down")
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	_, err := p.ProcessQuery(context.Background(), "tell me about amenities", "+1234567890")
	require.Error(t, err)
	require.Empty(t, db.messages)
}

func TestProcessQuery_PersistenceFailurePropagates(t *testing.T) {
	db := newFakeDB()
	db.brokers["+1234567890"] = authorizedBroker()
	db.properties = demoUnits()
	db.addErr = errors.New("db down")
	p := NewPipeline(db, &fakeEmbedder{}, &fakeLLM{})

	_, err := p.ProcessQuery(context.Background(), "cheapest unit", "+1234567890")
	require.Error(t, err)
}
