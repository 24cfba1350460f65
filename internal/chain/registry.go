// Package chain contains the static registry of blockchain networks the
// adapter can bridge between.
package chain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-route-ea/internal/errs"
)

// ID is the numeric EVM chain identifier of a supported network.
type ID uint64

// Chain identifiers for the supported networks
const (
	Ethereum  ID = 1
	Optimism  ID = 10
	BSC       ID = 56
	Polygon   ID = 137
	Base      ID = 8453
	Arbitrum  ID = 42161
	Avalanche ID = 43114
)

// Metadata holds the static description of a supported network.
type Metadata struct {
	ID             ID              `json:"id"`
	Name           string          `json:"name"`
	NativeSymbol   string          `json:"native_symbol"`
	NativeDecimals int             `json:"native_decimals"`
	ExplorerURL    string          `json:"explorer_url"`
	// GasPriceWei is the reference gas price used when no live source is available
	GasPriceWei decimal.Decimal `json:"gas_price_wei"`
	// NativeUSD is the reference USD price of the native currency
	NativeUSD decimal.Decimal `json:"native_usd"`
}

// Registry is a read-only lookup table of supported networks.
// It is safe for concurrent use after construction.
type Registry struct {
	byName map[string]Metadata
	byID   map[ID]Metadata
}

// NewRegistry builds a registry from the given chain metadata.
func NewRegistry(chains ...Metadata) *Registry {
	r := &Registry{
		byName: make(map[string]Metadata, len(chains)),
		byID:   make(map[ID]Metadata, len(chains)),
	}
	for _, c := range chains {
		r.byName[strings.ToLower(c.Name)] = c
		r.byID[c.ID] = c
	}
	return r
}

// DefaultRegistry returns the registry with the built-in network table.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Metadata{
			ID:             Ethereum,
			Name:           "ethereum",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://etherscan.io",
			GasPriceWei:    gwei("25"),
			NativeUSD:      decimal.NewFromInt(2500),
		},
		Metadata{
			ID:             Optimism,
			Name:           "optimism",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://optimistic.etherscan.io",
			GasPriceWei:    gwei("0.001"),
			NativeUSD:      decimal.NewFromInt(2500),
		},
		Metadata{
			ID:             BSC,
			Name:           "binance",
			NativeSymbol:   "BNB",
			NativeDecimals: 18,
			ExplorerURL:    "https://bscscan.com",
			GasPriceWei:    gwei("3"),
			NativeUSD:      decimal.NewFromInt(550),
		},
		Metadata{
			ID:             Polygon,
			Name:           "polygon",
			NativeSymbol:   "MATIC",
			NativeDecimals: 18,
			ExplorerURL:    "https://polygonscan.com",
			GasPriceWei:    gwei("30"),
			NativeUSD:      decimal.RequireFromString("0.8"),
		},
		Metadata{
			ID:             Base,
			Name:           "base",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://basescan.org",
			GasPriceWei:    gwei("0.05"),
			NativeUSD:      decimal.NewFromInt(2500),
		},
		Metadata{
			ID:             Arbitrum,
			Name:           "arbitrum",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://arbiscan.io",
			GasPriceWei:    gwei("0.1"),
			NativeUSD:      decimal.NewFromInt(2500),
		},
		Metadata{
			ID:             Avalanche,
			Name:           "avalanche",
			NativeSymbol:   "AVAX",
			NativeDecimals: 18,
			ExplorerURL:    "https://snowtrace.io",
			GasPriceWei:    gwei("25"),
			NativeUSD:      decimal.NewFromInt(35),
		},
	)
}

// Resolve maps a chain name to its numeric identifier.
// Names are matched case-insensitively.
func (r *Registry) Resolve(name string) (ID, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errs.UnknownChain(name)
	}
	return c.ID, nil
}

// Metadata returns the metadata for a chain identifier.
func (r *Registry) Metadata(id ID) (Metadata, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Name returns the canonical lowercase name for a chain identifier, or the
// empty string when the chain is not registered.
func (r *Registry) Name(id ID) string {
	if c, ok := r.byID[id]; ok {
		return c.Name
	}
	return ""
}

// TxURL builds the explorer link for a transaction on the given chain.
// Returns the empty string when the chain is not registered.
func (r *Registry) TxURL(id ID, txHash string) string {
	c, ok := r.byID[id]
	if !ok || txHash == "" {
		return ""
	}
	return c.ExplorerURL + "/tx/" + txHash
}

// gwei converts a gwei amount given as a decimal string to wei.
func gwei(v string) decimal.Decimal {
	return decimal.RequireFromString(v).Shift(9)
}
