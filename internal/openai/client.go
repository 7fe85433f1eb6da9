package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the OpenAI model used for synthesized replies
const DefaultChatModel = "gpt-4o-mini"

var (
	// ErrEmptyQuery is returned when the query text is empty
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the API returns no choices
	ErrEmptyCompletion = errors.New("no completion returned")
)

const systemPrompt = `You are a customer service specialist handling queries that were ` +
	`escalated past the standard knowledge bases. Give a short, direct resolution. ` +
	`If the query reports a safety issue or a foreign object in a product, open with ` +
	`an acknowledgement and promise a specialist follow-up.`

// ChatAPI defines the interface for chat completion
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client generates replies for escalated queries
type Client struct {
	api   ChatAPI
	model string
}

type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	return &Client{
		api:   openai.NewClient(cfg.APIKey),
		model: model,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// SynthesizeReply generates a resolution for a query neither knowledge tier
// could answer. The flagged sensitivity category, when present, is passed to
// the model so the reply matches the severity of the report.
func (c *Client) SynthesizeReply(ctx context.Context, query string, category string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	userContent := query
	if category != "" {
		userContent = fmt.Sprintf("[flagged: %s] %s", category, query)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
