package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/services"
)

// UploadHandler handles dataset file uploads.
type UploadHandler struct {
	uploadService  services.UploadService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploadService services.UploadService, maxUploadBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService:  uploadService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.Upload)
}

// Upload handles POST /api/upload requests. Expects a multipart form with a
// "file" part and the session in a "sessionId" field or X-Session-Id header.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "no file provided")
		return
	}
	defer file.Close()

	sessionID := r.FormValue("sessionId")
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-Id")
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "failed to read uploaded file")
		return
	}

	dataset, err := h.uploadService.Upload(r.Context(), &services.UploadRequest{
		Filename:  header.Filename,
		SessionID: sessionID,
		Content:   content,
	})
	if err != nil {
		h.logger.Warn("Upload failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, dataset); err != nil {
		h.logger.Error("Failed to encode upload response", zap.Error(err))
	}
}
