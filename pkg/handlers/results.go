package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/repositories"
)

// QueryHistoryResponse wraps the query record array.
type QueryHistoryResponse struct {
	Queries []*models.QueryRecord `json:"queries"`
}

// ResultsHandler serves stored query results and per-dataset history.
type ResultsHandler struct {
	historyRepo repositories.QueryHistoryRepository
	logger      *zap.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(historyRepo repositories.QueryHistoryRepository, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// RegisterRoutes registers the results handler's routes on the given mux.
func (h *ResultsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/results/{id}", h.Get)
	mux.HandleFunc("GET /api/results/history/{datasetId}", h.History)
}

// Get handles GET /api/results/{id} requests.
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	recordID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid result ID")
		return
	}

	record, err := h.historyRepo.GetByID(r.Context(), recordID)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode result response", zap.Error(err))
	}
}

// History handles GET /api/results/history/{datasetId}?sessionId=... requests.
func (h *ResultsHandler) History(w http.ResponseWriter, r *http.Request) {
	datasetID, err := uuid.Parse(r.PathValue("datasetId"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid dataset ID")
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-Id")
	}
	if sessionID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "session ID is required")
		return
	}

	records, err := h.historyRepo.ListByDataset(r.Context(), datasetID, sessionID)
	if err != nil {
		h.logger.Error("Failed to list query history",
			zap.String("dataset_id", datasetID.String()),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, QueryHistoryResponse{Queries: records}); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}
