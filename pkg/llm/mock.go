package llm

import (
	"context"

	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/prompts"
)

// Mock is a test double for Generator with injectable behavior.
type Mock struct {
	GenerateSQLFunc          func(ctx context.Context, question, tableName string, schema []models.ColumnSchema) (string, error)
	GenerateChatResponseFunc func(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*ChatReply, error)

	// Recorded inputs from the most recent calls.
	LastQuestion string
	LastHistory  []models.ConversationMessage
}

// GenerateSQL delegates to GenerateSQLFunc.
func (m *Mock) GenerateSQL(ctx context.Context, question, tableName string, schema []models.ColumnSchema) (string, error) {
	m.LastQuestion = question
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, question, tableName, schema)
	}
	return "", nil
}

// GenerateChatResponse delegates to GenerateChatResponseFunc.
func (m *Mock) GenerateChatResponse(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*ChatReply, error) {
	m.LastQuestion = question
	m.LastHistory = history
	if m.GenerateChatResponseFunc != nil {
		return m.GenerateChatResponseFunc(ctx, question, datasets, history)
	}
	return &ChatReply{Message: "ok"}, nil
}
