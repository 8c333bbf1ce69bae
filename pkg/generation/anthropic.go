package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/retry"
)

const defaultMaxTokens = 4000

type anthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a Client backed by the Anthropic Messages API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &anthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("generation-anthropic"),
	}, nil
}

var _ Client = (*anthropicClient)(nil)

func (c *anthropicClient) GenerateDocument(ctx context.Context, req *Request) (*Result, error) {
	prompt := buildPrompt(req)

	c.logger.Debug("Generation request",
		zap.String("model", c.model),
		zap.String("document_type", req.DocumentType),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()

	resp, err := retry.DoWithResult(ctx, nil, func() (anthropic.MessagesResponse, error) {
		return c.client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			MaxTokens: c.maxTokens,
			System:    systemPrompt,
			Messages: []anthropic.Message{
				anthropic.NewUserTextMessage(prompt),
			},
		})
	})
	if err != nil {
		c.logger.Error("Generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	content := resp.GetFirstContentText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	c.logger.Info("Generation request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Title:   documentTitle(req),
		Content: content,
		Model:   c.model,
	}, nil
}
