package api

import "net/http"

// handleExamples 返回接口用法速查，供前端与调试使用。
func (s *Server) handleExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": map[string]any{
			"chat": map[string]any{
				"method":      "POST",
				"url":         "/chat",
				"body":        map[string]any{"message": "Check the activity for wallet 0x1234...", "sessionId": "user123"},
				"description": "Chat with conversation history support",
			},
			"chat_history": map[string]any{
				"method":      "GET",
				"url":         "/chat/history/{sessionId}",
				"description": "Get conversation history for a session",
			},
			"clear_history": map[string]any{
				"method":      "DELETE",
				"url":         "/chat/history/{sessionId}",
				"description": "Clear conversation history for a session",
			},
			"active_sessions": map[string]any{
				"method":      "GET",
				"url":         "/chat/sessions",
				"description": "Get all active conversation sessions",
			},
			"wallet_activity": map[string]any{
				"method": "GET",
				"url":    "/wallet/{address}/activity",
			},
			"native_balance": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/balance/{chainId}",
				"description": "Get native token balance for a wallet on a specific chain",
			},
			"native_balance_default": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/balance",
				"description": "Get native token balance for a wallet on eth-sepolia (default)",
			},
			"transaction_summary": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/transactions/{chainId}",
				"description": "Get transaction summary for a wallet on a specific chain",
			},
			"transaction_summary_default": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/transactions",
				"description": "Get transaction summary for a wallet on eth-sepolia (default)",
			},
			"approvals": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/approvals/{chainId}",
				"description": "Get a wallet's token approvals categorized by spender on a chain",
			},
			"approvals_default": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/approvals",
				"description": "Get a wallet's token approvals on eth-sepolia (default)",
			},
			"btc_hd_wallets": map[string]any{
				"method":      "GET",
				"url":         "/wallet/btc/{xpub}/hd_wallets/{chainId}",
				"description": "Fetch balances for each active child address for a BTC HD wallet on a chain",
			},
			"btc_hd_wallets_default": map[string]any{
				"method":      "GET",
				"url":         "/wallet/btc/{xpub}/hd_wallets",
				"description": "Fetch balances for each active child address for a BTC HD wallet on btc-mainnet (default)",
			},
			"nft_balances": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/nfts/{chainId}",
				"description": "Get NFTs (ERC721/ERC1155) held by a wallet on a chain",
			},
			"nft_balances_default": map[string]any{
				"method":      "GET",
				"url":         "/wallet/{address}/nfts",
				"description": "Get NFTs held by a wallet on eth-mainnet (default)",
			},
			"health": map[string]any{
				"method": "GET",
				"url":    "/health",
			},
			"status": map[string]any{
				"method": "GET",
				"url":    "/status",
			},
		},
		"example_queries": []string{
			"What is the activity for wallet 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045?",
			"Show me the transaction history for 0x742d35Cc6634C0532925a3b8D45C5D6d2d5f9e8C",
			"Analyze the wallet activity for vitalik.eth",
			"What is the ETH balance for wallet 0x2514844f312c02ae3c9d4feb40db4ec8830b6844 on Sepolia?",
			"Check the native token balance for 0x1234... on Ethereum mainnet",
			"Get transaction summary for wallet 0x2514844f312c02ae3c9d4feb40db4ec8830b6844 on Sepolia",
			"Show me the transaction count and latest activity for 0x1234... on Polygon",
			"List NFTs owned by 0x2514... on Ethereum mainnet",
			"Show top 10 NFTs for 0x1234... on Polygon",
			"List all spenders and approvals for 0x2514... on Sepolia",
			"Show token approvals for 0x1234... on Ethereum mainnet",
			"Fetch BTC HD wallet child balances for xpub6DUM... on mainnet",
		},
		"available_chains": s.chains.Names(),
	})
}
