package api

import (
	"github.com/gorilla/mux"

	"github.com/coginfy/relay/internal/api/recovery"
	"github.com/coginfy/relay/internal/auth"
	"github.com/coginfy/relay/internal/services"
)

// NewRouter creates the HTTP router with all relay routes. Everything except
// the health endpoint sits behind the identity middleware.
func NewRouter(svc *services.RelayService, authorizer auth.Authorizer) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	conversationHandler := NewConversationHandler(svc)
	messageHandler := NewMessageHandler(svc)

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(RequireIdentity(authorizer))

	// Conversation endpoints
	protected.HandleFunc("/conversations", conversationHandler.CreateConversation).Methods("POST")
	protected.HandleFunc("/conversations", conversationHandler.ListConversations).Methods("GET")
	protected.HandleFunc("/conversations/{conversationId}", conversationHandler.RenameConversation).Methods("PATCH")
	protected.HandleFunc("/conversations/{conversationId}", conversationHandler.DeleteConversation).Methods("DELETE")

	// Message endpoints
	protected.HandleFunc("/conversations/{conversationId}/messages", messageHandler.SendMessage).Methods("POST")
	protected.HandleFunc("/conversations/{conversationId}/messages", messageHandler.FetchMessages).Methods("GET")

	return router
}
