package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const completionsPath = "/v1/chat/completions"

// GatewayClient calls an OpenAI-style chat completions endpoint
type GatewayClient struct {
	url     string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
	log     *logrus.Logger
}

// GatewayConfig configures a GatewayClient
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

// NewGatewayClient initializes a new gateway client
func NewGatewayClient(cfg GatewayConfig, log *logrus.Logger) *GatewayClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GatewayClient{
		url:     strings.TrimSuffix(cfg.BaseURL, "/") + completionsPath,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: timeout,
		client:  &http.Client{},
		log:     log,
	}
}

// Complete posts the prompts and returns the first choice's message content
func (c *GatewayClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.sendRequest(ctx, c.buildRequest(systemPrompt, userPrompt))
	if err != nil {
		return "", timeoutErr(ctx, err)
	}
	return parseCompletion(body)
}

func (c *GatewayClient) buildRequest(systemPrompt, userPrompt string) completionRequest {
	req := completionRequest{Model: c.model}
	if systemPrompt != "" {
		req.Messages = append(req.Messages, message{Role: "system", Content: systemPrompt})
	}
	req.Messages = append(req.Messages, message{Role: "user", Content: userPrompt})
	return req
}

func (c *GatewayClient) sendRequest(ctx context.Context, payload completionRequest) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	c.log.WithFields(logrus.Fields{"model": c.model, "bytes": len(body)}).Debug("Completion received")
	return body, nil
}

// parseCompletion extracts choices[0].message.content
func parseCompletion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("malformed completion response")
	}
	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() || content.Type != gjson.String {
		return "", fmt.Errorf("completion response has no choice content")
	}
	return content.String(), nil
}
