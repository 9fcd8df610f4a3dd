// Package character loads the immutable persona profile used to build the
// persona-mode system prompt. The profile is read once at startup and never
// mutated afterwards, so it is safe for concurrent reads.
package character

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Profile 描述聊天人设。字段与 agent.json 保持一致。
type Profile struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Personality    string `json:"personality"`
	Scenario       string `json:"scenario"`
	MessageExample string `json:"messageExample"`
}

// Load 从 JSON 文件加载人设。文件缺失时返回 nil（使用默认系统提示）。
func Load(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取人设文件失败: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(content, &profile); err != nil {
		return nil, fmt.Errorf("解析人设文件失败: %w", err)
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, fmt.Errorf("人设文件缺少 name 字段")
	}
	return &profile, nil
}
