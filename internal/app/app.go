package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/geniumhq/genium-backend/internal/config"
	"github.com/geniumhq/genium-backend/internal/core"
	db "github.com/geniumhq/genium-backend/internal/core/database"
	"github.com/geniumhq/genium-backend/internal/core/llm"
	"github.com/geniumhq/genium-backend/internal/core/rag"
	"github.com/geniumhq/genium-backend/internal/core/whatsapp"
)

type App struct {
	DBClient core.DbClient
	Pipeline *rag.Pipeline
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	if cfg.SeedDemoData {
		properties, brokers, err := dbClient.SeedDatabase(appCtx)
		if err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		if properties > 0 || brokers > 0 {
			log.Printf("Seeded %d properties and %d brokers.", properties, brokers)
		}
	}

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
	}

	pipeline := rag.NewPipeline(dbClient, geminiEmbedder, llmProvider)

	sender := whatsapp.NewSenderFromConfig(cfg)
	if sender == nil {
		log.Println("WhatsApp delivery not configured; webhook answers will be logged only.")
	}

	server := NewServer(cfg, dbClient, pipeline, sender)

	return &App{DBClient: dbClient, Pipeline: pipeline, Server: server}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
