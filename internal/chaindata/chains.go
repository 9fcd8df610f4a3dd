package chaindata

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChainCatalogue models the structure of configs/chains.yaml.
type ChainCatalogue struct {
	Chains map[string]ChainDefinition `yaml:"chains"`
}

// ChainDefinition describes a single chain known to the upstream API.
type ChainDefinition struct {
	Description string `yaml:"description"`
	Testnet     bool   `yaml:"testnet"`
}

// defaultChains 是未提供 chains.yaml 时的内置链目录。
var defaultChains = map[string]ChainDefinition{
	"eth-sepolia":       {Description: "Ethereum Sepolia testnet", Testnet: true},
	"eth-mainnet":       {Description: "Ethereum mainnet"},
	"polygon-mainnet":   {Description: "Polygon PoS mainnet"},
	"bsc-mainnet":       {Description: "BNB Smart Chain mainnet"},
	"avalanche-mainnet": {Description: "Avalanche C-Chain mainnet"},
	"fantom-mainnet":    {Description: "Fantom Opera mainnet"},
	"btc-mainnet":       {Description: "Bitcoin mainnet"},
}

// LoadChainCatalogue parses the YAML chain catalogue. An empty path yields
// the built-in defaults.
func LoadChainCatalogue(path string) (ChainCatalogue, error) {
	if strings.TrimSpace(path) == "" {
		return ChainCatalogue{Chains: defaultChains}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ChainCatalogue{}, fmt.Errorf("读取链目录失败: %w", err)
	}

	var catalogue ChainCatalogue
	if err := yaml.Unmarshal(content, &catalogue); err != nil {
		return ChainCatalogue{}, fmt.Errorf("解析链目录失败: %w", err)
	}
	if len(catalogue.Chains) == 0 {
		catalogue.Chains = defaultChains
	}
	return catalogue, nil
}

// Names returns the known chain identifiers in stable order.
func (c ChainCatalogue) Names() []string {
	names := make([]string, 0, len(c.Chains))
	for name := range c.Chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether the chain identifier appears in the catalogue.
func (c ChainCatalogue) Known(chainID string) bool {
	_, ok := c.Chains[chainID]
	return ok
}
