package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/services"
)

// ChatTurnRequest is the POST /api/chat body. History carries the prior
// turns of the conversation as the client has accumulated them.
type ChatTurnRequest struct {
	Question  string                       `json:"question"`
	SessionID string                       `json:"sessionId"`
	History   []models.ConversationMessage `json:"history,omitempty"`
}

// ChatHandler handles conversational queries over all session datasets.
type ChatHandler struct {
	chatService services.ChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-Id")
	}

	result, err := h.chatService.Chat(r.Context(), &services.ChatRequest{
		Question:  req.Question,
		SessionID: sessionID,
		History:   req.History,
	})
	if err != nil {
		h.logger.Warn("Chat turn failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode chat response", zap.Error(err))
	}
}
