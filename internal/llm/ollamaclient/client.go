package ollamaclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/SamFelix03/megha-network-arbitrum/internal/llm"
)

const (
	defaultBaseURL = "http://127.0.0.1:11434"
	defaultModel   = "nemotron-mini:latest"
	defaultTimeout = 60 * time.Second
)

// Config 描述了调用 Ollama 所需的信息。
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client 通过 Ollama 官方客户端调用本地补全模型。
type Client struct {
	api   *ollama.Client
	model string
}

// NewClient 根据配置创建 Ollama 客户端。
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("解析 Ollama 地址失败: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		api:   ollama.NewClient(base, &http.Client{Timeout: timeout}),
		model: model,
	}, nil
}

// Model 返回客户端绑定的模型名。
func (c *Client) Model() string {
	return c.model
}

// Generate 以非流式方式调用 /api/generate 并返回完整补全文本。
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	options := map[string]any{
		"temperature": opts.Temperature,
		"top_p":       opts.TopP,
	}
	if len(opts.Stop) > 0 {
		options["stop"] = opts.Stop
	}

	stream := false
	req := &ollama.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: options,
	}

	var text strings.Builder
	err := c.api.Generate(ctx, req, func(resp ollama.GenerateResponse) error {
		text.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("Ollama 推理超时: %w", err)
		}
		return "", fmt.Errorf("请求 Ollama 失败: %w", err)
	}
	return text.String(), nil
}

// Models 返回后端当前可用的模型名称列表，用于可用性探测。
func (c *Client) Models(ctx context.Context) ([]string, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询 Ollama 模型列表失败: %w", err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

var (
	_ llm.Client         = (*Client)(nil)
	_ llm.StatusReporter = (*Client)(nil)
)
