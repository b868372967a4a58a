package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/prompts"
)

// AnthropicClient generates SQL and chat responses through the Anthropic
// Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	maxRows   int
	logger    *zap.Logger
}

// NewAnthropicClient creates an Anthropic-backed generation client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = 1000
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		maxRows:   maxRows,
		logger:    logger.Named("llm-anthropic"),
	}, nil
}

// GenerateSQL translates a question into raw SQL text for one table.
func (c *AnthropicClient) GenerateSQL(ctx context.Context, question, tableName string, schema []models.ColumnSchema) (string, error) {
	prompt := prompts.BuildSQLGenerationPrompt(question, tableName, schema, c.maxRows)

	content, err := c.complete(ctx, "", []anthropic.Message{
		{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
			{Type: "text", Text: &prompt},
		}},
	})
	if err != nil {
		return "", err
	}

	sqlText := StripCodeFences(content)
	if sqlText == "" {
		return "", fmt.Errorf("%w: generator returned no SQL", apperrors.ErrGeneration)
	}

	return sqlText, nil
}

// GenerateChatResponse answers a question over all session datasets using
// the structured {message, sql?} contract.
func (c *AnthropicClient) GenerateChatResponse(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*ChatReply, error) {
	messages := make([]anthropic.Message, 0, len(history)+1)
	for i := range history {
		role := anthropic.RoleUser
		if history[i].Role == models.ChatRoleAssistant {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{{Type: "text", Text: &history[i].Content}},
		})
	}
	messages = append(messages, anthropic.Message{
		Role:    anthropic.RoleUser,
		Content: []anthropic.MessageContent{{Type: "text", Text: &question}},
	})

	content, err := c.complete(ctx, prompts.BuildChatSystemPrompt(datasets, c.maxRows), messages)
	if err != nil {
		return nil, err
	}

	return parseChatReply(content)
}

func (c *AnthropicClient) complete(ctx context.Context, system string, messages []anthropic.Message) (string, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}
	if system != "" {
		req.System = system
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		c.logger.Error("Anthropic request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", apperrors.ErrGeneration, err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil && strings.TrimSpace(*block.Text) != "" {
			return strings.TrimSpace(*block.Text), nil
		}
	}

	return "", fmt.Errorf("%w: empty response content", apperrors.ErrGeneration)
}
