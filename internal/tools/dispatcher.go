package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SamFelix03/megha-network-arbitrum/internal/chaindata"
	"github.com/SamFelix03/megha-network-arbitrum/pkg/logger"
)

// 结果投影的上限。上游返回的完整数据太长，会冲垮模型的上下文窗口。
const (
	maxActivityItems  = 5
	maxNftCollections = 20
	maxNftTokens      = 5
)

// Dispatcher 按名称执行工具并把结果序列化为 JSON 字符串。执行永不返回
// Go 错误：任何失败都编码进返回的载荷里，交给模型去总结。
type Dispatcher struct {
	chain *chaindata.Client
}

// NewDispatcher 创建工具分发器。
func NewDispatcher(chain *chaindata.Client) *Dispatcher {
	return &Dispatcher{chain: chain}
}

// Execute 执行指定工具。未知工具名同样以载荷形式报告。
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) string {
	log := logger.Named("tools")
	log.Info("执行工具", "tool", name)

	switch name {
	case NameWalletActivity:
		return d.walletActivity(ctx, args)
	case NameNativeBalance:
		return d.nativeBalance(ctx, args)
	case NameTransactionSummary:
		return d.transactionSummary(ctx, args)
	case NameNftBalances:
		return d.nftBalances(ctx, args)
	case NameApprovals:
		return d.approvals(ctx, args)
	case NameBtcHdWalletBalances:
		return d.btcHdWalletBalances(ctx, args)
	default:
		log.Warn("未知工具", "tool", name)
		return marshalPayload(map[string]any{
			"error": fmt.Sprintf("Function %s not found", name),
		})
	}
}

func (d *Dispatcher) walletActivity(ctx context.Context, args map[string]any) string {
	address, payload := requireAddress(args, "walletAddress")
	if payload != "" {
		return payload
	}

	resp, err := d.chain.Get(ctx, "/v1/address/"+address+"/activity/", url.Values{
		"testnets": {"true"},
	})
	if err != nil {
		return transportFailure("Failed to fetch wallet activity", err)
	}
	if !resp.OK() {
		return upstreamFailure(resp)
	}

	data := asMap(resp.Body["data"])
	items := asSlice(data["items"])
	if items == nil {
		items = []any{}
	}
	if len(items) > maxActivityItems {
		items = items[:maxActivityItems]
	}
	totalCount := numberOf(data["total_count"])

	return marshalPayload(map[string]any{
		"address":     stringOr(data["address"], address),
		"total_count": totalCount,
		"page_number": numberOf(data["page_number"]),
		"page_size":   numberOf(data["page_size"]),
		"activities":  items,
		"has_more":    totalCount > maxActivityItems,
	})
}

func (d *Dispatcher) nativeBalance(ctx context.Context, args map[string]any) string {
	address, payload := requireAddress(args, "walletAddress")
	if payload != "" {
		return payload
	}
	chainID := chainArg(args, defaultEvmTestChain)

	resp, err := d.chain.Get(ctx, "/v1/"+chainID+"/address/"+address+"/balances_native/", url.Values{
		"quote-currency": {"USD"},
	})
	if err != nil {
		return transportFailure("Failed to fetch native balance", err)
	}
	if !resp.OK() {
		return upstreamFailure(resp)
	}

	data := asMap(resp.Body["data"])
	first := firstItem(data)

	return marshalPayload(map[string]any{
		"address":                stringOr(data["address"], address),
		"chain_id":               valueOr(data["chain_id"], chainID),
		"balance":                stringOr(first["balance"], "0"),
		"balance_formatted":      stringOr(first["balance_formatted"], "0"),
		"quote_currency":         stringOr(first["quote_currency"], "USD"),
		"quote":                  valueOr(first["quote"], 0),
		"quote_rate":             valueOr(first["quote_rate"], 0),
		"contract_name":          stringOr(first["contract_name"], "Native Token"),
		"contract_ticker_symbol": stringOr(first["contract_ticker_symbol"], "ETH"),
	})
}

func (d *Dispatcher) transactionSummary(ctx context.Context, args map[string]any) string {
	address, payload := requireAddress(args, "walletAddress")
	if payload != "" {
		return payload
	}
	chainID := chainArg(args, defaultEvmTestChain)

	resp, err := d.chain.Get(ctx, "/v1/"+chainID+"/address/"+address+"/transactions_summary/", url.Values{
		"quote-currency": {"USD"},
	})
	if err != nil {
		return transportFailure("Failed to fetch transaction summary", err)
	}
	if !resp.OK() {
		return upstreamFailure(resp)
	}

	data := asMap(resp.Body["data"])
	first := firstItem(data)
	latest := asMap(first["latest_transaction"])
	earliest := asMap(first["earliest_transaction"])

	return marshalPayload(map[string]any{
		"address":            stringOr(data["address"], address),
		"chain_id":           valueOr(data["chain_id"], chainID),
		"chain_name":         stringOr(data["chain_name"], chainID),
		"updated_at":         data["updated_at"],
		"total_transactions": valueOr(first["total_count"], 0),
		"latest_transaction": map[string]any{
			"block_signed_at": latest["block_signed_at"],
			"tx_hash":         latest["tx_hash"],
			"tx_detail_link":  latest["tx_detail_link"],
		},
		"earliest_transaction": map[string]any{
			"block_signed_at": earliest["block_signed_at"],
			"tx_hash":         earliest["tx_hash"],
			"tx_detail_link":  earliest["tx_detail_link"],
		},
	})
}

func (d *Dispatcher) nftBalances(ctx context.Context, args map[string]any) string {
	address, payload := requireAddress(args, "walletAddress")
	if payload != "" {
		return payload
	}
	chainID := chainArg(args, defaultEvmMainChain)

	resp, err := d.chain.Get(ctx, "/v1/"+chainID+"/address/"+address+"/balances_nft/", nil)
	if err != nil {
		return transportFailure("Failed to fetch NFT balances", err)
	}
	if !resp.OK() {
		return upstreamFailure(resp)
	}

	data := asMap(resp.Body["data"])
	items := asSlice(data["items"])
	totalCollections := len(items)
	if len(items) > maxNftCollections {
		items = items[:maxNftCollections]
	}

	summarized := make([]map[string]any, 0, len(items))
	for _, item := range items {
		collection := asMap(item)
		tokens := asSlice(collection["nft_data"])
		if len(tokens) > maxNftTokens {
			tokens = tokens[:maxNftTokens]
		}

		projected := make([]map[string]any, 0, len(tokens))
		for _, token := range tokens {
			tokenMap := asMap(token)
			entry := map[string]any{
				"token_id":       tokenMap["token_id"],
				"token_url":      tokenMap["token_url"],
				"original_owner": tokenMap["original_owner"],
				"owner":          tokenMap["owner"],
			}
			if external := asMap(tokenMap["external_data"]); len(external) > 0 {
				entry["external_data"] = map[string]any{
					"name":        external["name"],
					"description": external["description"],
					"image":       external["image"],
					"image_256":   external["image_256"],
					"image_512":   external["image_512"],
					"image_1024":  external["image_1024"],
				}
			}
			projected = append(projected, entry)
		}

		summarized = append(summarized, map[string]any{
			"contract_address":       collection["contract_address"],
			"contract_name":          collection["contract_name"],
			"contract_ticker_symbol": collection["contract_ticker_symbol"],
			"supports_erc":           collection["supports_erc"],
			"type":                   collection["type"],
			"balance":                collection["balance"],
			"balance_24h":            collection["balance_24h"],
			"nft_data":               projected,
		})
	}

	return marshalPayload(map[string]any{
		"address":           stringOr(data["address"], address),
		"chain_id":          valueOr(data["chain_id"], chainID),
		"chain_name":        data["chain_name"],
		"updated_at":        data["updated_at"],
		"total_collections": totalCollections,
		"items":             summarized,
	})
}

func (d *Dispatcher) approvals(ctx context.Context, args map[string]any) string {
	address, payload := requireAddress(args, "walletAddress")
	if payload != "" {
		return payload
	}
	chainID := chainArg(args, defaultEvmTestChain)

	resp, err := d.chain.Get(ctx, "/v1/"+chainID+"/approvals/"+address+"/", nil)
	if err != nil {
		return transportFailure("Failed to fetch approvals", err)
	}
	if !resp.OK() {
		return upstreamFailure(resp)
	}

	// 授权数据结构多变，原样转发给模型。
	return string(resp.Raw)
}

func (d *Dispatcher) btcHdWalletBalances(ctx context.Context, args map[string]any) string {
	xpub := stringArg(args, "walletXpub")
	if xpub == "" {
		return marshalPayload(map[string]any{
			"error": "HD wallet xpub is required",
		})
	}
	chainID := chainArg(args, defaultBtcChain)

	resp, err := d.chain.Get(ctx, "/v1/"+chainID+"/address/"+xpub+"/hd_wallets/", url.Values{
		"quote-currency": {"USD"},
	})
	if err != nil {
		return transportFailure("Failed to fetch HD wallet balances", err)
	}
	if !resp.OK() {
		return upstreamFailure(resp)
	}

	// 子地址列表直接转发，保留上游的完整结构。
	return string(resp.Raw)
}

// requireAddress 提取并规范化地址参数。第二个返回值非空时表示校验失败，
// 内容就是要返回的错误载荷。
func requireAddress(args map[string]any, key string) (string, string) {
	address := stringArg(args, key)
	if address == "" {
		return "", marshalPayload(map[string]any{
			"error": "Wallet address is required",
		})
	}
	return canonicalAddress(address), ""
}

// canonicalAddress 把合法的 EVM 地址规范化为 EIP-55 校验和形式，
// 其余输入（如 BTC 地址、ENS 名称）原样返回。
func canonicalAddress(address string) string {
	if common.IsHexAddress(address) {
		return common.HexToAddress(address).Hex()
	}
	return address
}

func transportFailure(message string, err error) string {
	return marshalPayload(map[string]any{
		"error":   message,
		"details": err.Error(),
	})
}

func upstreamFailure(resp *chaindata.Response) string {
	return marshalPayload(map[string]any{
		"error":   fmt.Sprintf("API Error: %d", resp.StatusCode),
		"message": resp.ErrorMessage(),
	})
}

func marshalPayload(payload any) string {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"Failed to encode tool result"}`
	}
	return string(encoded)
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	value, _ := args[key].(string)
	return value
}

func chainArg(args map[string]any, fallback string) string {
	if chainID := stringArg(args, "chainId"); chainID != "" {
		return chainID
	}
	return fallback
}

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}

func asSlice(value any) []any {
	s, _ := value.([]any)
	return s
}

func firstItem(data map[string]any) map[string]any {
	items := asSlice(data["items"])
	if len(items) == 0 {
		return nil
	}
	return asMap(items[0])
}

func stringOr(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return fallback
}

func numberOf(value any) float64 {
	n, _ := value.(float64)
	return n
}

func valueOr(value any, fallback any) any {
	if value == nil {
		return fallback
	}
	return value
}
