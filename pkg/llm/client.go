package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
	"github.com/Jmatos87/queryflow/pkg/models"
	"github.com/Jmatos87/queryflow/pkg/prompts"
)

// Client generates SQL and chat responses through an OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	maxRows   int
	logger    *zap.Logger
}

// Config holds configuration for creating a generation client.
type Config struct {
	// BaseURL overrides the endpoint for OpenAI-compatible servers. Empty
	// means the provider default.
	BaseURL string
	Model   string
	APIKey  string
	// MaxTokens bounds completion size.
	MaxTokens int
	// MaxRows is the LIMIT hint passed into prompts.
	MaxRows int
}

// NewClient creates an OpenAI-compatible generation client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = 1000
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: maxTokens,
		maxRows:   maxRows,
		logger:    logger.Named("llm"),
	}, nil
}

// GenerateSQL translates a question into raw SQL text for one table. The
// result has markdown code fences stripped but is otherwise unvalidated;
// the SQL validator is the safety boundary, not this client.
func (c *Client) GenerateSQL(ctx context.Context, question, tableName string, schema []models.ColumnSchema) (string, error) {
	prompt := prompts.BuildSQLGenerationPrompt(question, tableName, schema, c.maxRows)

	content, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
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
func (c *Client) GenerateChatResponse(ctx context.Context, question string, datasets []prompts.DatasetContext, history []models.ConversationMessage) (*ChatReply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompts.BuildChatSystemPrompt(datasets, c.maxRows),
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	return parseChatReply(content)
}

// complete runs one chat completion and returns the first choice's content.
func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", apperrors.ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", apperrors.ErrGeneration)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty response content", apperrors.ErrGeneration)
	}

	c.logger.Debug("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// parseChatReply extracts the structured {message, sql?} object from a chat
// response. Generators do not reliably honor formatting instructions, so a
// response with no parseable JSON degrades to prose-only.
func parseChatReply(content string) (*ChatReply, error) {
	reply, err := ParseJSONResponse[ChatReply](content)
	if err != nil {
		return &ChatReply{Message: strings.TrimSpace(content)}, nil
	}
	if strings.TrimSpace(reply.Message) == "" && strings.TrimSpace(reply.SQL) == "" {
		return nil, fmt.Errorf("%w: generator returned no usable content", apperrors.ErrGeneration)
	}
	reply.SQL = StripCodeFences(reply.SQL)
	return &reply, nil
}
