package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL OpenRouter 的 OpenAI 相容端點
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 8192
	maxLoggedBody    = 512
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	config provider.Config
}

var _ provider.Provider = (*Client)(nil)

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	if cfg.Referer != "" {
		client.SetHeader("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		client.SetHeader("X-Title", cfg.Title)
	}

	return &Client{
		client: client,
		config: cfg,
	}
}

// truncateBody 截斷響應內容，避免把整份菜單寫進日誌
func truncateBody(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return string(body[:maxLoggedBody]) + "...(truncated)"
}

// buildRequest 請求欄位未指定時沿用客戶端設定
func (c *Client) buildRequest(req *provider.Request) common.ChatCompletionRequest {
	body := common.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if body.Model == "" {
		body.Model = c.config.Model
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = c.config.MaxTokens
	}
	if body.Temperature == 0 {
		body.Temperature = c.config.Temperature
	}
	if body.TopP == 0 {
		body.TopP = c.config.TopP
	}
	if req.JSONMode {
		body.ResponseFormat = &common.ResponseFormat{Type: "json_object"}
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, common.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return body
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("request has no messages")
	}
	body := c.buildRequest(req)

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
		zap.Int("max_tokens", body.MaxTokens),
		zap.Bool("json_mode", req.JSONMode),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", body.Model),
		)
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", truncateBody(resp.Body())),
		)
		return nil, fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), truncateBody(resp.Body()))
	}

	var result common.ChatCompletionResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("OpenRouter API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	model := result.Model
	if model == "" {
		model = body.Model
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &provider.Response{
		Content:      content,
		Model:        model,
		FinishReason: result.Choices[0].FinishReason,
		Usage: provider.Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}, nil
}

// GetModel 預設模型
func (c *Client) GetModel() string {
	return c.config.Model
}

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration {
	return c.config.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
