package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/services"
)

// AskQueryRequest is the POST /api/query body.
type AskQueryRequest struct {
	DatasetID string `json:"datasetId"`
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

// QueryHandler handles single-dataset natural-language queries.
type QueryHandler struct {
	queryService services.QueryService
	logger       *zap.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(queryService services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Ask)
}

// Ask handles POST /api/query requests.
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	datasetID, err := uuid.Parse(req.DatasetID)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid dataset ID")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-Id")
	}

	result, err := h.queryService.Ask(r.Context(), &services.QueryRequest{
		DatasetID: datasetID,
		Question:  req.Question,
		SessionID: sessionID,
	})
	if err != nil {
		h.logger.Warn("Query failed",
			zap.String("dataset_id", req.DatasetID),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}
