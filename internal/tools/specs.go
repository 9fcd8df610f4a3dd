package tools

// Spec 描述一个可供模型调用的工具。目录在启动时固定，运行期只读。
type Spec struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters 描述工具的参数结构。
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property 描述单个参数。
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
}

// 工具名常量。分发表与提示词都以此为键。
const (
	NameWalletActivity      = "getWalletActivity"
	NameNativeBalance       = "getNativeBalance"
	NameTransactionSummary  = "getTransactionSummary"
	NameNftBalances         = "getNftBalances"
	NameApprovals           = "getApprovals"
	NameBtcHdWalletBalances = "getBtcHdWalletBalances"
)

// 每个工具的默认链。
const (
	defaultEvmTestChain = "eth-sepolia"
	defaultEvmMainChain = "eth-mainnet"
	defaultBtcChain     = "btc-mainnet"
)

var catalogue = []Spec{
	{
		Name:        NameWalletActivity,
		Description: "Get the chains the wallet is active on and lists those chains along with their information",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"walletAddress": {
					Type:        "string",
					Description: "The wallet address to check activity for (e.g., 0x1234...)",
				},
			},
			Required: []string{"walletAddress"},
		},
	},
	{
		Name:        NameNativeBalance,
		Description: "Get the native token balance for a wallet address on a specific chain",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"walletAddress": {
					Type:        "string",
					Description: "The wallet address to check balance for (e.g., 0x1234...)",
				},
				"chainId": {
					Type:        "string",
					Description: "The chain ID or name (e.g., eth-sepolia, eth-mainnet, polygon-mainnet)",
					Default:     defaultEvmTestChain,
				},
			},
			Required: []string{"walletAddress"},
		},
	},
	{
		Name:        NameTransactionSummary,
		Description: "Get a summary of transactions for a wallet address on a specific chain including total count, latest and earliest transactions",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"walletAddress": {
					Type:        "string",
					Description: "The wallet address to get transaction summary for (e.g., 0x1234...)",
				},
				"chainId": {
					Type:        "string",
					Description: "The chain ID or name (e.g., eth-sepolia, eth-mainnet, polygon-mainnet)",
					Default:     defaultEvmTestChain,
				},
			},
			Required: []string{"walletAddress"},
		},
	},
	{
		Name:        NameNftBalances,
		Description: "Get NFTs (ERC721 and ERC1155) held by a wallet on a specific chain",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"walletAddress": {
					Type:        "string",
					Description: "The wallet address to get NFT balances for (e.g., 0x1234...)",
				},
				"chainId": {
					Type:        "string",
					Description: "The chain ID or name (e.g., eth-mainnet, eth-sepolia, polygon-mainnet)",
					Default:     defaultEvmMainChain,
				},
			},
			Required: []string{"walletAddress"},
		},
	},
	{
		Name:        NameApprovals,
		Description: "Get a wallet's token approvals across contracts categorized by spender",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"walletAddress": {
					Type:        "string",
					Description: "The wallet address to get approvals for (e.g., 0x1234...)",
				},
				"chainId": {
					Type:        "string",
					Description: "The chain ID or name (e.g., eth-sepolia, eth-mainnet, polygon-mainnet)",
					Default:     defaultEvmTestChain,
				},
			},
			Required: []string{"walletAddress"},
		},
	},
	{
		Name:        NameBtcHdWalletBalances,
		Description: "Fetch balances for each active child address derived from a Bitcoin HD wallet (xpub/ypub/zpub)",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"walletXpub": {
					Type:        "string",
					Description: "The xpub/ypub/zpub of the HD wallet",
				},
				"chainId": {
					Type:        "string",
					Description: "Bitcoin chain identifier (e.g., btc-mainnet, btc-testnet)",
					Default:     defaultBtcChain,
				},
			},
			Required: []string{"walletXpub"},
		},
	},
}

// Catalogue 返回全部工具定义（固定顺序）。
func Catalogue() []Spec {
	out := make([]Spec, len(catalogue))
	copy(out, catalogue)
	return out
}
