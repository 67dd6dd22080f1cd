package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/geniumhq/genium-backend/internal/api/handlers"
	appMiddleware "github.com/geniumhq/genium-backend/internal/api/middlewares"
	"github.com/geniumhq/genium-backend/internal/config"
	"github.com/geniumhq/genium-backend/internal/core"
	"github.com/geniumhq/genium-backend/internal/core/rag"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, pipeline *rag.Pipeline, sender core.WhatsAppSender) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	webhookHandler := handlers.NewWebhookHandler(pipeline, sender)
	queryHandler := handlers.NewQueryHandler(pipeline)
	brokerHandler := handlers.NewBrokerHandler(db)
	conversationHandler := handlers.NewConversationHandler(db)
	propertyHandler := handlers.NewPropertyHandler(db, pipeline)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// WhatsApp webhook and liveness stay unauthenticated; the providers
	// cannot carry our tokens.
	r.Post("/webhook/whatsapp", webhookHandler.HandleWhatsApp)
	r.Get("/test", handlers.Health)

	// API routes
	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			protected.Post("/query", queryHandler.ProcessQuery)

			protected.Get("/brokers", brokerHandler.ListBrokers)
			protected.Post("/brokers", brokerHandler.CreateBroker)
			protected.Patch("/brokers/{brokerID}", brokerHandler.UpdateBrokerAuth)
			protected.Delete("/brokers/{brokerID}", brokerHandler.DeleteBroker)

			protected.Get("/conversations", conversationHandler.ListConversations)
			protected.Get("/conversations/{conversationID}/messages", conversationHandler.GetConversationMessages)
			protected.Get("/messages/recent", conversationHandler.GetRecentMessages)

			protected.Get("/properties", propertyHandler.ListProperties)
			protected.Get("/properties/search", propertyHandler.SearchProperties)
			protected.Patch("/properties/{propertyID}", propertyHandler.UpdateProperty)
			protected.Post("/properties/embeddings", propertyHandler.GenerateEmbeddings)

			protected.Post("/seed", propertyHandler.SeedDatabase)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
