package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/llm"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/prompts"
)

func TestChatService_Chat_WithSQL(t *testing.T) {
	dataset := testDataset("sess-1")
	historyRepo := &fakeHistoryRepo{}
	executor := &fakeExecutor{result: &ExecutionResult{
		Rows:            []map[string]any{{"name": "Alice"}},
		RowCount:        1,
		ExecutionTimeMs: 3,
	}}
	generator := &llm.Mock{
		GenerateChatResponseFunc: func(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*llm.ChatReply, error) {
			require.Len(t, datasets, 1)
			assert.Equal(t, "ds_a1b2c3d4e5f6", datasets[0].TableName)
			return &llm.ChatReply{
				Message: "Alice is the oldest person.",
				SQL:     `SELECT "name" FROM "ds_a1b2c3d4e5f6" ORDER BY "age" DESC LIMIT 1`,
			}, nil
		},
	}

	svc := NewChatService(newFakeDatasetRepo(dataset), historyRepo, generator, executor, 20, zaptest.NewLogger(t))

	result, err := svc.Chat(context.Background(), &ChatRequest{
		Question:  "who is the oldest?",
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice is the oldest person.", result.Message)
	assert.NotEmpty(t, result.SQL)
	assert.Equal(t, 1, result.RowCount)

	// Cross-dataset records carry no owning dataset.
	require.Len(t, historyRepo.records, 1)
	assert.Nil(t, historyRepo.records[0].DatasetID)
	assert.Equal(t, "sess-1", historyRepo.records[0].SessionID)
}

func TestChatService_Chat_ProseOnly(t *testing.T) {
	dataset := testDataset("sess-1")
	historyRepo := &fakeHistoryRepo{}
	executor := &fakeExecutor{}
	generator := &llm.Mock{
		GenerateChatResponseFunc: func(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*llm.ChatReply, error) {
			return &llm.ChatReply{Message: "The dataset has two columns."}, nil
		},
	}

	svc := NewChatService(newFakeDatasetRepo(dataset), historyRepo, generator, executor, 20, zaptest.NewLogger(t))

	result, err := svc.Chat(context.Background(), &ChatRequest{
		Question:  "describe the data",
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "The dataset has two columns.", result.Message)
	assert.Empty(t, result.SQL)
	assert.Zero(t, executor.calls)
	assert.Empty(t, historyRepo.records)
}

func TestChatService_Chat_InvalidSQLDegradesToProse(t *testing.T) {
	dataset := testDataset("sess-1")
	historyRepo := &fakeHistoryRepo{}
	executor := &fakeExecutor{}
	generator := &llm.Mock{
		GenerateChatResponseFunc: func(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*llm.ChatReply, error) {
			// References a table the session does not own.
			return &llm.ChatReply{
				Message: "Here are the results.",
				SQL:     `SELECT * FROM other_table`,
			}, nil
		},
	}

	svc := NewChatService(newFakeDatasetRepo(dataset), historyRepo, generator, executor, 20, zaptest.NewLogger(t))

	result, err := svc.Chat(context.Background(), &ChatRequest{
		Question:  "show me everything",
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	// The turn survives; the message explains that the query was dropped.
	assert.Contains(t, result.Message, "Here are the results.")
	assert.Contains(t, result.Message, "safety checks")
	assert.Empty(t, result.SQL)
	assert.Zero(t, executor.calls)
	assert.Empty(t, historyRepo.records)
}

func TestChatService_Chat_ExecutionFailureDegradesToProse(t *testing.T) {
	dataset := testDataset("sess-1")
	historyRepo := &fakeHistoryRepo{}
	executor := &fakeExecutor{err: errors.New("relation does not exist")}
	generator := &llm.Mock{
		GenerateChatResponseFunc: func(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*llm.ChatReply, error) {
			return &llm.ChatReply{
				Message: "Let me check.",
				SQL:     `SELECT * FROM "ds_a1b2c3d4e5f6"`,
			}, nil
		},
	}

	svc := NewChatService(newFakeDatasetRepo(dataset), historyRepo, generator, executor, 20, zaptest.NewLogger(t))

	result, err := svc.Chat(context.Background(), &ChatRequest{
		Question:  "show me everything",
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Message, "failed to execute")
	assert.Empty(t, result.SQL)
	assert.Empty(t, historyRepo.records)
}

func TestChatService_Chat_BoundsHistory(t *testing.T) {
	dataset := testDataset("sess-1")
	generator := &llm.Mock{}

	svc := NewChatService(newFakeDatasetRepo(dataset), &fakeHistoryRepo{}, generator, &fakeExecutor{}, 3, zaptest.NewLogger(t))

	history := make([]models.ConversationMessage, 10)
	for i := range history {
		history[i] = models.ConversationMessage{Role: models.ChatRoleUser, Content: string(rune('a' + i))}
	}

	_, err := svc.Chat(context.Background(), &ChatRequest{
		Question:  "q",
		SessionID: "sess-1",
		History:   history,
	})
	require.NoError(t, err)

	// Only the most recent turns are forwarded.
	require.Len(t, generator.LastHistory, 3)
	assert.Equal(t, "h", generator.LastHistory[0].Content)
	assert.Equal(t, "j", generator.LastHistory[2].Content)
}

func TestChatService_Chat_NoDatasets(t *testing.T) {
	svc := NewChatService(newFakeDatasetRepo(), &fakeHistoryRepo{}, &llm.Mock{}, &fakeExecutor{}, 20, zaptest.NewLogger(t))

	_, err := svc.Chat(context.Background(), &ChatRequest{
		Question:  "q",
		SessionID: "sess-1",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChatService_Chat_ValidatesInput(t *testing.T) {
	svc := NewChatService(newFakeDatasetRepo(), &fakeHistoryRepo{}, &llm.Mock{}, &fakeExecutor{}, 20, zaptest.NewLogger(t))

	_, err := svc.Chat(context.Background(), &ChatRequest{SessionID: "s"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Chat(context.Background(), &ChatRequest{Question: "q"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
