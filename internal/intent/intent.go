// Package intent decides whether an incoming message should be answered in
// persona mode or routed into tool mode. Classification is a pure,
// recall-biased keyword test: a false positive still degrades gracefully
// because tool mode works without a tool call, while a false negative only
// costs the user a persona-style answer.
package intent

import "strings"

// Mode 是分类结果的封闭枚举。
type Mode string

const (
	// ModePersona 表示按人设回答，不暴露工具。
	ModePersona Mode = "persona"
	// ModeTool 表示允许模型请求执行链上数据工具。
	ModeTool Mode = "tool"
)

// walletKeywords 覆盖钱包与链相关的词汇。
var walletKeywords = []string{
	"wallet", "address", "balance", "transaction", "nft", "approval", "approvals",
	"btc", "bitcoin", "xpub", "ypub", "zpub", "hd wallet", "child address",
	"eth", "ethereum", "polygon", "bsc", "avalanche", "fantom",
	"0x", "crypto", "blockchain", "chain", "token", "tool", "coin",
}

// Classify 对消息进行大小写不敏感的包含匹配，命中任一关键词即为工具模式。
func Classify(message string) Mode {
	lower := strings.ToLower(message)
	for _, keyword := range walletKeywords {
		if strings.Contains(lower, keyword) {
			return ModeTool
		}
	}
	return ModePersona
}
