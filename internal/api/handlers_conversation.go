package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coginfy/relay/internal/api/respond"
	"github.com/coginfy/relay/internal/api/validate"
	"github.com/coginfy/relay/internal/model"
	"github.com/coginfy/relay/internal/services"
)

// ConversationHandler provides HTTP transport for conversation lifecycle
// operations.
type ConversationHandler struct {
	svc *services.RelayService
}

func NewConversationHandler(svc *services.RelayService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// writeServiceError maps domain errors onto HTTP status codes. Anything
// unrecognized is reported as a generic relay failure.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		respond.WriteUnauthorized(w, "unauthorized")
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "conversation not found")
	default:
		respond.WriteInternalError(w, "relay failure")
	}
}

// CreateConversation POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ConversationName(req.Name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	conv, err := h.svc.CreateConversation(r.Context(), req.Name, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, conv)
}

// ListConversations GET /api/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	lst, err := h.svc.ListConversations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": lst, "count": len(lst)})
}

// RenameConversation PATCH /api/conversations/{conversationId}
func (h *ConversationHandler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ConversationName(req.Name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.svc.RenameConversation(r.Context(), conversationID, req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"conversationId": conversationID, "name": req.Name})
}

// DeleteConversation DELETE /api/conversations/{conversationId}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	if err := h.svc.DeleteConversation(r.Context(), conversationID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
