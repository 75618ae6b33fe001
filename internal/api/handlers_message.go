package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coginfy/relay/internal/api/respond"
	"github.com/coginfy/relay/internal/api/validate"
	"github.com/coginfy/relay/internal/services"
)

// MessageHandler provides HTTP transport for the relay send/fetch path.
type MessageHandler struct {
	svc *services.RelayService
}

func NewMessageHandler(svc *services.RelayService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// SendMessage POST /api/conversations/{conversationId}/messages
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "unauthorized")
		return
	}
	conversationID := mux.Vars(r)["conversationId"]

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.MessageText(req.Text); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	res, err := h.svc.SendMessage(r.Context(), conversationID, req.Text, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, res)
}

// FetchMessages GET /api/conversations/{conversationId}/messages?since=RFC3339
func (h *MessageHandler) FetchMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "unauthorized")
		return
	}
	conversationID := mux.Vars(r)["conversationId"]

	since, err := validate.Since(r.URL.Query().Get("since"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	page, err := h.svc.FetchMessages(r.Context(), conversationID, caller, since)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if page.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": page.Messages, "count": len(page.Messages)})
}
