// Package llm provides the text-generation clients used to translate natural
// language questions into SQL.
package llm

import (
	"context"

	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/prompts"
)

// ChatReply is the structured response expected from the generator in chat
// mode. SQL is empty when the generator chose to answer in prose only.
type ChatReply struct {
	Message string `json:"message"`
	SQL     string `json:"sql,omitempty"`
}

// Generator is the interface to the external text generator. Use this for
// dependency injection to enable mocking in tests.
type Generator interface {
	// GenerateSQL translates a question about one dataset into raw SQL text.
	GenerateSQL(ctx context.Context, question, tableName string, schema []models.ColumnSchema) (string, error)

	// GenerateChatResponse answers a question over all session datasets,
	// optionally producing SQL alongside the prose message. History carries
	// prior conversation turns, already bounded by the caller.
	GenerateChatResponse(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*ChatReply, error)
}

// Ensure implementations satisfy Generator at compile time.
var (
	_ Generator = (*Client)(nil)
	_ Generator = (*AnthropicClient)(nil)
	_ Generator = (*Mock)(nil)
)
