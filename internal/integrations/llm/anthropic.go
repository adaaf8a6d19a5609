package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const anthropicMaxTokens = 1024

// AnthropicClient generates text with the Anthropic Messages API
type AnthropicClient struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	log     *logrus.Logger
}

// AnthropicConfig configures an AnthropicClient
type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API host, mostly for tests
	BaseURL string
}

// NewAnthropicClient initializes a new Anthropic-backed client
func NewAnthropicClient(cfg AnthropicConfig, log *logrus.Logger) *AnthropicClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicClient{
		client:  anthropic.NewClient(opts...),
		model:   cfg.Model,
		timeout: timeout,
		log:     log,
	}
}

// Complete sends one message and joins the text blocks of the reply
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", timeoutErr(ctx, fmt.Errorf("anthropic request failed: %w", err))
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic response has no text content")
	}

	c.log.WithField("model", c.model).Debug("Anthropic completion received")
	return strings.Join(parts, "\n"), nil
}
