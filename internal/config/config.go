package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config 描述了钱包聊天服务在启动阶段需要加载的核心配置。
type Config struct {
	Server    ServerConfig    `json:"server"`
	LLM       LLMConfig       `json:"llm"`
	ChainData ChainDataConfig `json:"chain_data"`
	Chat      ChatConfig      `json:"chat"`
	Character CharacterConfig `json:"character"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig 控制 API 服务的监听地址等参数。
type ServerConfig struct {
	Address string `json:"address"`
}

// LLMConfig 用于配置补全模型后端（Ollama）的调用方式。
type LLMConfig struct {
	BaseURL        string  `json:"base_url"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// Timeout 返回模型调用的超时时间。
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChainDataConfig 描述访问链上数据 API（Covalent）所需的信息。
// APIKeyEnv 指定承载密钥的环境变量名，优先于明文 APIKey。
type ChainDataConfig struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	APIKeyEnv      string `json:"api_key_env"`
	ChainsPath     string `json:"chains_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout 返回链上数据请求的超时时间。
func (c ChainDataConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveAPIKey 解析最终生效的 API Key。
func (c ChainDataConfig) ResolveAPIKey() string {
	if c.APIKeyEnv != "" {
		if v := strings.TrimSpace(os.Getenv(c.APIKeyEnv)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.APIKey)
}

// ChatConfig 控制会话历史的行为。
type ChatConfig struct {
	MaxHistory       int    `json:"max_history"`
	EnableHistory    *bool  `json:"enable_history"`
	DefaultSessionID string `json:"default_session_id"`
}

// HistoryEnabled 返回会话历史开关，默认开启。
func (c ChatConfig) HistoryEnabled() bool {
	if c.EnableHistory == nil {
		return true
	}
	return *c.EnableHistory
}

// CharacterConfig 指定人设文件的位置。
type CharacterConfig struct {
	Path string `json:"path"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level  string      `json:"level"`
	Format string      `json:"format"`
	Output string      `json:"output"`
	Audit  AuditConfig `json:"audit"`
}

// AuditConfig 控制聊天轮次审计日志。
type AuditConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":3000"
	}

	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://127.0.0.1:11434"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "nemotron-mini:latest"
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.TopP <= 0 {
		c.LLM.TopP = 0.9
	}

	if c.ChainData.BaseURL == "" {
		c.ChainData.BaseURL = "https://api.covalenthq.com"
	}
	if c.ChainData.APIKeyEnv == "" {
		c.ChainData.APIKeyEnv = "COVALENT_API_KEY"
	}

	if c.Chat.MaxHistory <= 0 {
		c.Chat.MaxHistory = 3
	}
	if c.Chat.DefaultSessionID == "" {
		c.Chat.DefaultSessionID = "default"
	}

	if c.Character.Path == "" {
		c.Character.Path = filepath.Join(baseDir, "agent.json")
	} else if !filepath.IsAbs(c.Character.Path) {
		c.Character.Path = filepath.Join(baseDir, c.Character.Path)
	}

	if c.ChainData.ChainsPath != "" && !filepath.IsAbs(c.ChainData.ChainsPath) {
		c.ChainData.ChainsPath = filepath.Join(baseDir, c.ChainData.ChainsPath)
	}
}
