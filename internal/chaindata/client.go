package chaindata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.covalenthq.com"
	defaultTimeout = 30 * time.Second
)

// Config 描述访问链上数据 API 所需的信息。
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client 通过 HTTP 调用 Covalent 风格的链上数据 API。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Response 保存一次上游请求的解码结果。
type Response struct {
	StatusCode int
	Body       map[string]any
	Raw        json.RawMessage
}

// OK 判断上游是否返回成功状态。
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorMessage 返回上游错误说明，缺失时回退为通用文案。
func (r *Response) ErrorMessage() string {
	if msg, ok := r.Body["error_message"].(string); ok && msg != "" {
		return msg
	}
	return "Unknown error"
}

// NewClient 根据配置创建链上数据客户端。
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get 请求指定端点并解码 JSON 响应。返回的 error 仅代表传输或解码失败；
// 非 2xx 状态通过 Response 传递给调用方，由其决定如何向模型呈现。
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构建链上数据请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求链上数据 API 失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("读取链上数据响应失败: %w", err)
	}

	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("解析链上数据响应失败: %w", err)
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Raw:        json.RawMessage(raw),
	}, nil
}
