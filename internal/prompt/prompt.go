// Package prompt 负责把系统提示、会话历史、工具定义与用户消息
// 组装成 Nemotron Mini 的角色定界提示词。
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SamFelix03/megha-network-arbitrum/internal/character"
	"github.com/SamFelix03/megha-network-arbitrum/internal/tools"
)

// Nemotron Mini 的角色定界符。生成时把它们作为停止序列，
// 防止模型替用户或系统续写。
const (
	SystemMarker = "<extra_id_0>"
	TurnMarker   = "<extra_id_1>"
)

// StopSequences 返回首段生成使用的停止序列。
func StopSequences() []string {
	return []string{SystemMarker, TurnMarker}
}

// DefaultSystemPrompt 是未配置角色档案时的兜底系统提示。
const DefaultSystemPrompt = "You are a helpful AI assistant."

// ToolSystemPrompt 是钱包类请求使用的系统提示，逐条列出六个工具的
// 调用格式。措辞是协议的一部分，不要改写。
const ToolSystemPrompt = `You are a helpful cryptocurrency and blockchain assistant. You have access to six tools:

IMPORTANT: After executing a tool call and receiving the tool response, you must provide a clear, human-readable summary of the information. Do NOT repeat the tool call format. Instead, explain the results in a natural, conversational way.

1. getWalletActivity - Get the chains the wallet is active on and lists those chains along with their information. Use this format:
<toolcall>
{"name": "getWalletActivity", "arguments": {"walletAddress": "wallet_address_here"}}
</toolcall>

2. getNativeBalance - Get the native token balance for a wallet address on a specific chain. Use this format:
<toolcall>
{"name": "getNativeBalance", "arguments": {"walletAddress": "wallet_address_here", "chainId": "eth-sepolia"}}
</toolcall>

3. getTransactionSummary - Get a summary of transactions for a wallet address on a specific chain including total count, latest and earliest transactions. Use this format:
<toolcall>
{"name": "getTransactionSummary", "arguments": {"walletAddress": "wallet_address_here", "chainId": "eth-sepolia"}}
</toolcall>

4. getNftBalances - Get NFTs (ERC721 and ERC1155) held by a wallet on a specific chain. Use this format:
<toolcall>
{"name": "getNftBalances", "arguments": {"walletAddress": "wallet_address_here", "chainId": "eth-mainnet"}}
</toolcall>

5. getApprovals - Get a wallet's token approvals across contracts categorized by spender. Use this format:
<toolcall>
{"name": "getApprovals", "arguments": {"walletAddress": "wallet_address_here", "chainId": "eth-sepolia"}}
</toolcall>

6. getBtcHdWalletBalances - Fetch balances for each active child address derived from a Bitcoin HD wallet. Use this format:
<toolcall>
{"name": "getBtcHdWalletBalances", "arguments": {"walletXpub": "xpub_here", "chainId": "btc-mainnet"}}
</toolcall>

Available chain IDs include: eth-sepolia, eth-mainnet, polygon-mainnet, bsc-mainnet, etc.

After getting wallet data, list the chains the wallet is active on. This could be identified by checking the chain name, next to the value "name" in the response. For balance queries, provide the balance in both raw and formatted amounts with USD value. For transaction summaries, provide the total transaction count and details about the latest and earliest transactions.`

// PersonaSystemPrompt 根据角色档案生成日常对话的系统提示。
// 档案缺失时使用兜底提示。
func PersonaSystemPrompt(profile *character.Profile) string {
	if profile == nil {
		return DefaultSystemPrompt
	}
	return fmt.Sprintf(`You are %s. %s

Personality: %s

Scenario: %s

Example message: %s

Respond as this character would, staying in character while being helpful and friendly.`,
		profile.Name, profile.Description, profile.Personality, profile.Scenario, profile.MessageExample)
}

// Build 按 Nemotron 的角色定界格式拼装首段提示。history 为空字符串时
// 不占位；toolSpecs 为空时不渲染工具块；toolResponse 非空时作为上下文
// 注入在用户消息之前。
func Build(systemPrompt, userMessage string, toolSpecs []tools.Spec, toolResponse, history string) string {
	var b strings.Builder
	b.WriteString(SystemMarker)
	b.WriteString("System\n")
	b.WriteString(systemPrompt)
	b.WriteString(history)
	b.WriteString("\n\n")

	for _, spec := range toolSpecs {
		encoded, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			continue
		}
		b.WriteString("<tool>\n")
		b.Write(encoded)
		b.WriteString("\n</tool>\n")
	}

	if toolResponse != "" {
		b.WriteString("<context>\n")
		b.WriteString(toolResponse)
		b.WriteString("\n</context>\n\n")
	}

	b.WriteString(TurnMarker)
	b.WriteString("User\n")
	b.WriteString(userMessage)
	b.WriteString("\n")
	b.WriteString(TurnMarker)
	b.WriteString("Assistant\n")
	return b.String()
}

// FollowUp 构造第二段提示：带上原始调用与工具结果，让模型给出一句
// 简短的确认语。第二段生成不加停止序列。
func FollowUp(userMessage, rawToolCall, toolResult string) string {
	return fmt.Sprintf(`You are a helpful cryptocurrency and blockchain assistant.

User asked: "%s"

Tool call was made: %s

Tool response: %s

Please respond with a simple one-liner acknowledging that you found the results for the query. Keep it brief and conversational.`,
		userMessage, rawToolCall, toolResult)
}
