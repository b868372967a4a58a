package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/llm"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/prompts"
	"github.com/Jmatos87/queryflow/pkg/repositories"
	sqlguard "github.com/Jmatos87/queryflow/pkg/sql"
)

// ChatRequest is one conversational turn over all datasets in a session.
type ChatRequest struct {
	Question  string
	SessionID string
	History   []models.ConversationMessage
}

// ChatResult is the assistant's reply for one turn. SQL, Results, and
// RowCount are only set when the generator produced SQL and it executed
// successfully.
type ChatResult struct {
	Message         string           `json:"message"`
	SQL             string           `json:"sql,omitempty"`
	Results         []map[string]any `json:"results,omitempty"`
	RowCount        int              `json:"row_count,omitempty"`
	ExecutionTimeMs int64            `json:"execution_time_ms,omitempty"`
}

// ChatService answers conversational questions across every dataset in a
// session.
type ChatService interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
}

type chatService struct {
	datasetRepo  repositories.DatasetRepository
	historyRepo  repositories.QueryHistoryRepository
	generator    llm.Generator
	executor     QueryExecutor
	historyLimit int
	logger       *zap.Logger
}

// NewChatService creates a chat service. historyLimit bounds how many prior
// conversation messages are forwarded to the generator.
func NewChatService(
	datasetRepo repositories.DatasetRepository,
	historyRepo repositories.QueryHistoryRepository,
	generator llm.Generator,
	executor QueryExecutor,
	historyLimit int,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		datasetRepo:  datasetRepo,
		historyRepo:  historyRepo,
		generator:    generator,
		executor:     executor,
		historyLimit: historyLimit,
		logger:       logger.Named("chat"),
	}
}

var _ ChatService = (*chatService)(nil)

// Chat runs one conversational turn. SQL failures degrade to a prose-only
// answer; a turn never fails because generated SQL did not validate or
// execute.
func (s *chatService) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if req.Question == "" {
		return nil, fmt.Errorf("%w: question is required", apperrors.ErrValidation)
	}
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: session ID is required", apperrors.ErrValidation)
	}

	datasets, err := s.datasetRepo.ListBySession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		return nil, fmt.Errorf("%w: no datasets uploaded for this session", apperrors.ErrNotFound)
	}

	contexts := make([]prompts.DatasetContext, len(datasets))
	allowedTables := make([]string, len(datasets))
	for i, d := range datasets {
		contexts[i] = prompts.DatasetContext{
			Name:      d.Name,
			TableName: d.TableName,
			Schema:    d.Schema,
			RowCount:  d.RowCount,
		}
		allowedTables[i] = d.TableName
	}

	history := req.History
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}

	reply, err := s.generator.GenerateChatResponse(ctx, req.Question, contexts, history)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{
		Message: llm.SanitizeChatMessage(reply.Message),
	}

	if reply.SQL == "" {
		return result, nil
	}

	validated, err := sqlguard.Validate(reply.SQL, allowedTables)
	if err != nil {
		s.logger.Warn("Chat SQL failed validation",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		result.Message = appendExplanation(result.Message,
			"I generated a query for this, but it did not pass safety checks, so I have answered without running it.")
		return result, nil
	}

	execution, err := s.executor.RunReadOnly(ctx, validated)
	if err != nil {
		s.logger.Warn("Chat SQL failed execution",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		result.Message = appendExplanation(result.Message,
			"I generated a query for this, but it failed to execute, so I have answered without its results.")
		return result, nil
	}

	result.SQL = validated
	result.Results = execution.Rows
	result.RowCount = execution.RowCount
	result.ExecutionTimeMs = execution.ExecutionTimeMs

	// Cross-dataset turns have no single owning dataset, so DatasetID stays
	// nil. Only successful executions are recorded.
	record := &models.QueryRecord{
		NaturalLanguage: req.Question,
		GeneratedSQL:    validated,
		Result:          execution.Rows,
		RowCount:        execution.RowCount,
		ExecutionTimeMs: execution.ExecutionTimeMs,
		SessionID:       req.SessionID,
	}
	if err := s.historyRepo.Create(ctx, record); err != nil {
		s.logger.Warn("Failed to persist chat query record",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
	}

	s.logger.Info("Answered chat turn",
		zap.String("session_id", req.SessionID),
		zap.Int("datasets", len(datasets)),
		zap.Int("rows", execution.RowCount))

	return result, nil
}

func appendExplanation(message, explanation string) string {
	if message == "" {
		return explanation
	}
	return message + "\n\n" + explanation
}
