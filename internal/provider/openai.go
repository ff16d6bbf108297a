// Package provider adapts an OpenAI-compatible API to the two capabilities
// the core needs from the model backend: text generation and embeddings.
// Any endpoint speaking the OpenAI wire format works via OPENAI_BASE_URL.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config holds backend connection settings.
type Config struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
}

// Client is a thin adapter over the OpenAI client.
type Client struct {
	api        openai.Client
	chatModel  string
	embedModel string
}

// New creates a backend client. BaseURL may be empty for the default API.
func New(cfg Config) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:        openai.NewClient(opts...),
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
	}
}

// Generate invokes the generation backend once with the given prompt and
// returns the raw completion text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(512),
	})
	if err != nil {
		return "", wrapUpstream("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", domain.ErrUpstreamFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, wrapUpstream("embedding", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embedding returned no data", domain.ErrUpstreamFailure)
	}
	return resp.Data[0].Embedding, nil
}

// wrapUpstream maps transport failures onto the shared error taxonomy.
func wrapUpstream(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamFailure, op, err)
}
