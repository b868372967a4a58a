package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/llm"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/repositories"
	sqlguard "github.com/Jmatos87/queryflow/pkg/sql"
)

// QueryRequest is one natural-language question about a single dataset.
type QueryRequest struct {
	DatasetID uuid.UUID
	Question  string
	SessionID string
}

// QueryResult is the answer to a single-dataset question.
type QueryResult struct {
	ID              uuid.UUID        `json:"id"`
	SQL             string           `json:"sql"`
	Results         []map[string]any `json:"results"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
}

// QueryService answers natural-language questions about one dataset by
// generating, validating, and executing SQL.
type QueryService interface {
	Ask(ctx context.Context, req *QueryRequest) (*QueryResult, error)
}

type queryService struct {
	datasetRepo repositories.DatasetRepository
	historyRepo repositories.QueryHistoryRepository
	generator   llm.Generator
	executor    QueryExecutor
	logger      *zap.Logger
}

// NewQueryService creates a query service.
func NewQueryService(
	datasetRepo repositories.DatasetRepository,
	historyRepo repositories.QueryHistoryRepository,
	generator llm.Generator,
	executor QueryExecutor,
	logger *zap.Logger,
) QueryService {
	return &queryService{
		datasetRepo: datasetRepo,
		historyRepo: historyRepo,
		generator:   generator,
		executor:    executor,
		logger:      logger.Named("query"),
	}
}

var _ QueryService = (*queryService)(nil)

// Ask runs the full pipeline: load the dataset, generate SQL for the
// question, validate the SQL against the dataset's table, execute it
// read-only, and record the result.
func (s *queryService) Ask(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	if req.Question == "" {
		return nil, fmt.Errorf("%w: question is required", apperrors.ErrValidation)
	}
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID is required", apperrors.ErrValidation)
	}

	dataset, err := s.datasetRepo.GetByID(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateSQL(ctx, req.Question, dataset.TableName, dataset.Schema)
	if err != nil {
		return nil, err
	}

	validated, err := sqlguard.Validate(generated, []string{dataset.TableName})
	if err != nil {
		s.logger.Warn("Generated SQL failed validation",
			zap.String("dataset_id", dataset.ID.String()),
			zap.Error(err))
		return nil, err
	}

	result, err := s.executor.RunReadOnly(ctx, validated)
	if err != nil {
		return nil, err
	}

	record := &models.QueryRecord{
		DatasetID:       &dataset.ID,
		NaturalLanguage: req.Question,
		GeneratedSQL:    validated,
		Result:          result.Rows,
		RowCount:        result.RowCount,
		ExecutionTimeMs: result.ExecutionTimeMs,
		SessionID:       req.SessionID,
	}

	// History is an audit trail, not the answer. A persist failure must not
	// discard a result we already computed.
	if err := s.historyRepo.Create(ctx, record); err != nil {
		s.logger.Warn("Failed to persist query record",
			zap.String("dataset_id", dataset.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Answered query",
		zap.String("dataset_id", dataset.ID.String()),
		zap.Int("rows", result.RowCount),
		zap.Int64("elapsed_ms", result.ExecutionTimeMs))

	return &QueryResult{
		ID:              record.ID,
		SQL:             validated,
		Results:         result.Rows,
		RowCount:        result.RowCount,
		ExecutionTimeMs: result.ExecutionTimeMs,
	}, nil
}
