package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/ingest"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/repositories"
)

// DataLoader is the storage-side half of the upload pipeline.
// *ingest.Loader is the production implementation.
type DataLoader interface {
	CreateTable(ctx context.Context, tableName string, schema []models.ColumnSchema) error
	LoadData(ctx context.Context, tableName string, table *ingest.ParsedTable, schema []models.ColumnSchema) (int, error)
	DropTable(ctx context.Context, tableName string) error
}

// UploadRequest carries one uploaded file and its owning session.
type UploadRequest struct {
	Filename  string
	SessionID string
	Content   []byte
}

// UploadService turns an uploaded file into a loaded, typed dataset.
type UploadService interface {
	Upload(ctx context.Context, req *UploadRequest) (*models.Dataset, error)
}

type uploadService struct {
	analyzer       *ingest.Analyzer
	loader         DataLoader
	datasetRepo    repositories.DatasetRepository
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(
	analyzer *ingest.Analyzer,
	loader DataLoader,
	datasetRepo repositories.DatasetRepository,
	maxUploadBytes int64,
	logger *zap.Logger,
) UploadService {
	return &uploadService{
		analyzer:       analyzer,
		loader:         loader,
		datasetRepo:    datasetRepo,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("upload"),
	}
}

var _ UploadService = (*uploadService)(nil)

// Upload parses the file, infers its schema, materializes a typed table,
// loads the rows, and persists the dataset metadata.
func (s *uploadService) Upload(ctx context.Context, req *UploadRequest) (*models.Dataset, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID is required", apperrors.ErrValidation)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: no file provided", apperrors.ErrValidation)
	}
	if s.maxUploadBytes > 0 && int64(len(req.Content)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d byte limit", apperrors.ErrValidation, s.maxUploadBytes)
	}

	fileType, err := FileTypeFromFilename(req.Filename)
	if err != nil {
		return nil, err
	}

	table, err := ingest.Parse(fileType, req.Content)
	if err != nil {
		return nil, err
	}

	schema := s.analyzer.Analyze(table)
	tableName := ingest.GenerateTableName()

	s.logger.Info("Creating dataset table",
		zap.String("table", tableName),
		zap.String("filename", req.Filename),
		zap.Int("columns", len(schema)))

	if err := s.loader.CreateTable(ctx, tableName, schema); err != nil {
		return nil, err
	}

	rowCount, err := s.loader.LoadData(ctx, tableName, table, schema)
	if err != nil {
		// Leave no half-loaded orphan table behind.
		if dropErr := s.loader.DropTable(ctx, tableName); dropErr != nil {
			s.logger.Warn("Failed to drop table after load failure",
				zap.String("table", tableName),
				zap.Error(dropErr))
		}
		return nil, err
	}

	dataset := &models.Dataset{
		Name:             strings.TrimSuffix(req.Filename, filepath.Ext(req.Filename)),
		OriginalFilename: req.Filename,
		FileType:         fileType,
		TableName:        tableName,
		Schema:           schema,
		RowCount:         rowCount,
		SessionID:        req.SessionID,
	}

	if err := s.datasetRepo.Create(ctx, dataset); err != nil {
		if dropErr := s.loader.DropTable(ctx, tableName); dropErr != nil {
			s.logger.Warn("Failed to drop table after metadata failure",
				zap.String("table", tableName),
				zap.Error(dropErr))
		}
		return nil, err
	}

	s.logger.Info("Uploaded dataset",
		zap.String("id", dataset.ID.String()),
		zap.String("table", tableName),
		zap.Int("rows", rowCount))

	return dataset, nil
}

// FileTypeFromFilename maps a file extension to its format, rejecting
// unsupported extensions.
func FileTypeFromFilename(filename string) (models.FileType, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "csv":
		return models.FileTypeCSV, nil
	case "json":
		return models.FileTypeJSON, nil
	case "sql":
		return models.FileTypeSQL, nil
	case "xlsx":
		return models.FileTypeXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension; use .csv, .json, .sql, or .xlsx", apperrors.ErrValidation)
	}
}
