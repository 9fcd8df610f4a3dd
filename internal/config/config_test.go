package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "walletai.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Address != ":3000" {
		t.Fatalf("default address not applied: %q", cfg.Server.Address)
	}
	if cfg.LLM.Model != "nemotron-mini:latest" {
		t.Fatalf("default model not applied: %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.3 || cfg.LLM.TopP != 0.9 {
		t.Fatalf("default sampling not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout() != 60*time.Second {
		t.Fatalf("default llm timeout not applied: %v", cfg.LLM.Timeout())
	}
	if cfg.ChainData.Timeout() != 30*time.Second {
		t.Fatalf("default chain-data timeout not applied: %v", cfg.ChainData.Timeout())
	}
	if cfg.Chat.MaxHistory != 3 || cfg.Chat.DefaultSessionID != "default" {
		t.Fatalf("default chat settings not applied: %+v", cfg.Chat)
	}
	if !cfg.Chat.HistoryEnabled() {
		t.Fatalf("history must default to enabled")
	}
	if filepath.Base(cfg.Character.Path) != "agent.json" {
		t.Fatalf("default character path not applied: %q", cfg.Character.Path)
	}
}

func TestLoadRelativePathsResolveAgainstConfigDir(t *testing.T) {
	path := writeConfig(t, `{
		"chain_data": {"chains_path": "chains.yaml"},
		"character": {"path": "persona.json"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := filepath.Dir(path)
	if cfg.ChainData.ChainsPath != filepath.Join(base, "chains.yaml") {
		t.Fatalf("chains path not resolved: %q", cfg.ChainData.ChainsPath)
	}
	if cfg.Character.Path != filepath.Join(base, "persona.json") {
		t.Fatalf("character path not resolved: %q", cfg.Character.Path)
	}
}

func TestLoadExplicitHistoryDisable(t *testing.T) {
	path := writeConfig(t, `{"chat": {"enable_history": false}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chat.HistoryEnabled() {
		t.Fatalf("explicit false must win over the default")
	}
}

func TestResolveAPIKeyPrefersEnv(t *testing.T) {
	t.Setenv("WALLETAI_TEST_KEY", "from-env")

	cfg := ChainDataConfig{APIKey: "from-file", APIKeyEnv: "WALLETAI_TEST_KEY"}
	if got := cfg.ResolveAPIKey(); got != "from-env" {
		t.Fatalf("env key must win, got %q", got)
	}

	cfg.APIKeyEnv = "WALLETAI_TEST_KEY_MISSING"
	if got := cfg.ResolveAPIKey(); got != "from-file" {
		t.Fatalf("missing env must fall back to the file key, got %q", got)
	}
}

func TestLoadRejectsBrokenJSON(t *testing.T) {
	path := writeConfig(t, `{"server": `)
	if _, err := Load(path); err == nil {
		t.Fatalf("broken JSON must fail")
	}
}
