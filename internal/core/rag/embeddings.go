package rag

import (
	"context"
	"fmt"
	"log"

	"github.com/geniumhq/genium-backend/internal/models"
)

// GeneratePropertyEmbeddings backfills embedding vectors for properties that
// do not have one yet. Texts are embedded in a single batch; a failed store
// for one property is logged and skipped rather than aborting the rest.
// Returns the number of embeddings stored.
func (p *Pipeline) GeneratePropertyEmbeddings(ctx context.Context) (int, error) {
	properties, err := p.db.ListPropertiesMissingEmbedding(ctx)
	if err != nil {
		return 0, fmt.Errorf("list properties: %w", err)
	}
	if len(properties) == 0 {
		return 0, nil
	}

	texts := make([]string, len(properties))
	for i, property := range properties {
		texts[i] = EmbeddingText(property)
	}

	vecs, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed properties: %w", err)
	}
	if len(vecs) != len(properties) {
		return 0, fmt.Errorf("embed properties: got %d vectors for %d properties", len(vecs), len(properties))
	}

	stored := 0
	for i, property := range properties {
		if err := p.db.SetPropertyEmbedding(ctx, property.ID, vecs[i]); err != nil {
			log.Printf("failed to store embedding for property %s: %v", property.ID, err)
			continue
		}
		stored++
	}
	return stored, nil
}

// EmbeddingText is the canonical text representation of a unit used for both
// indexing and query-time similarity.
func EmbeddingText(p models.Property) string {
	return fmt.Sprintf("%s unit with %d bedrooms, %d bathrooms, %d sqft. Price: $%d. %s",
		p.UnitType, p.Bedrooms, p.Bathrooms, p.Sqft, p.Price, p.Description)
}
