package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/services"
)

// ListDatasetsResponse wraps the dataset array.
type ListDatasetsResponse struct {
	Datasets []*models.Dataset `json:"datasets"`
}

// DeleteDatasetResponse for delete results.
type DeleteDatasetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DatasetsHandler handles dataset listing, inspection, and deletion.
type DatasetsHandler struct {
	datasetService services.DatasetService
	logger         *zap.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(datasetService services.DatasetService, logger *zap.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// RegisterRoutes registers the datasets handler's routes on the given mux.
func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.List)
	mux.HandleFunc("GET /api/datasets/{id}", h.Get)
	mux.HandleFunc("DELETE /api/datasets/{id}", h.Delete)
	mux.HandleFunc("DELETE /api/datasets/session/{sessionId}", h.DeleteSession)
}

// List handles GET /api/datasets?sessionId=... requests.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-Id")
	}
	if sessionID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "session ID is required")
		return
	}

	datasets, err := h.datasetService.List(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to list datasets", zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ListDatasetsResponse{Datasets: datasets}); err != nil {
		h.logger.Error("Failed to encode datasets response", zap.Error(err))
	}
}

// Get handles GET /api/datasets/{id} requests.
func (h *DatasetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	datasetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid dataset ID")
		return
	}

	dataset, err := h.datasetService.Get(r.Context(), datasetID)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, dataset); err != nil {
		h.logger.Error("Failed to encode dataset response", zap.Error(err))
	}
}

// Delete handles DELETE /api/datasets/{id} requests.
func (h *DatasetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	datasetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid dataset ID")
		return
	}

	if err := h.datasetService.Delete(r.Context(), datasetID); err != nil {
		h.logger.Error("Failed to delete dataset",
			zap.String("dataset_id", datasetID.String()),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	response := DeleteDatasetResponse{
		Success: true,
		Message: "dataset deleted",
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode delete response", zap.Error(err))
	}
}

// DeleteSession handles DELETE /api/datasets/session/{sessionId} requests.
func (h *DatasetsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "session ID is required")
		return
	}

	if err := h.datasetService.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to delete session datasets",
			zap.String("session_id", sessionID),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	response := DeleteDatasetResponse{
		Success: true,
		Message: "session datasets deleted",
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode delete response", zap.Error(err))
	}
}
