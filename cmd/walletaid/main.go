package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SamFelix03/megha-network-arbitrum/internal/api"
	"github.com/SamFelix03/megha-network-arbitrum/internal/chaindata"
	"github.com/SamFelix03/megha-network-arbitrum/internal/character"
	"github.com/SamFelix03/megha-network-arbitrum/internal/chat"
	"github.com/SamFelix03/megha-network-arbitrum/internal/config"
	"github.com/SamFelix03/megha-network-arbitrum/internal/llm/ollamaclient"
	"github.com/SamFelix03/megha-network-arbitrum/internal/session"
	"github.com/SamFelix03/megha-network-arbitrum/internal/tools"
	"github.com/SamFelix03/megha-network-arbitrum/pkg/logger"
)

// main 是钱包助手守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("walletaid 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	// .env 仅用于本地开发，缺失时静默忽略。
	_ = godotenv.Load()

	configPath := os.Getenv("WALLETAI_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "walletai.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	profile, err := character.Load(cfg.Character.Path)
	if err != nil {
		return err
	}
	if profile == nil {
		logger.L().Warn("未配置角色档案，使用默认系统提示")
	}

	chains, err := chaindata.LoadChainCatalogue(cfg.ChainData.ChainsPath)
	if err != nil {
		return err
	}

	llmClient, err := ollamaclient.NewClient(ollamaclient.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout(),
	})
	if err != nil {
		return err
	}

	// 启动时探测模型后端，不可用则直接失败。
	if _, err := llmClient.Models(ctx); err != nil {
		return errors.New("Ollama 不可用，请先启动模型后端: " + err.Error())
	}
	logger.L().Info("模型后端就绪", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model)

	chainClient := chaindata.NewClient(chaindata.Config{
		BaseURL: cfg.ChainData.BaseURL,
		APIKey:  cfg.ChainData.ResolveAPIKey(),
		Timeout: cfg.ChainData.Timeout(),
	})
	dispatcher := tools.NewDispatcher(chainClient)

	sessions := session.NewStore(cfg.Chat.MaxHistory, cfg.Chat.HistoryEnabled())

	svc := chat.New(llmClient, dispatcher, sessions,
		chat.WithCharacter(profile),
		chat.WithSampling(cfg.LLM.Temperature, cfg.LLM.TopP),
		chat.WithLLMTimeout(cfg.LLM.Timeout()),
		chat.WithDefaultSessionID(cfg.Chat.DefaultSessionID),
	)

	server := api.NewServer(cfg.Server.Address, svc, sessions, dispatcher, llmClient, llmClient.Model(), chains)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
