// Package model defines the core data structures for the bridge-route-ea.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-route-ea/internal/chain"
)

// Protocol identifies a bridge protocol served by a registered adapter.
type Protocol string

// Known bridge protocols
const (
	ProtocolStargate Protocol = "stargate"
	ProtocolAcross   Protocol = "across"
	ProtocolHop      Protocol = "hop"
)

// SecurityTier classifies the trust assumptions of a bridge protocol.
type SecurityTier string

// Security tiers, strongest first
const (
	SecurityHigh   SecurityTier = "HIGH"
	SecurityMedium SecurityTier = "MEDIUM"
	SecurityLow    SecurityTier = "LOW"
)

// Rank returns a numeric weight for ordering tiers; higher is safer.
func (s SecurityTier) Rank() int {
	switch s {
	case SecurityHigh:
		return 3
	case SecurityMedium:
		return 2
	case SecurityLow:
		return 1
	}
	return 0
}

// TimeRange is an estimated completion window for a bridge transfer.
type TimeRange struct {
	Min time.Duration
	Max time.Duration
}

// String renders the range the way bridge UIs display it, e.g. "2-5 minutes".
func (t TimeRange) String() string {
	return fmt.Sprintf("%d-%d minutes", int(t.Min.Minutes()), int(t.Max.Minutes()))
}

// MarshalJSON emits the window in seconds plus the display form.
func (t TimeRange) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"minSeconds":%d,"maxSeconds":%d,"display":%q}`,
		int64(t.Min.Seconds()), int64(t.Max.Seconds()), t.String())), nil
}

// BridgeRequest is a normalized transfer request handed to adapters.
// Immutable once constructed; discarded after the call completes.
type BridgeRequest struct {
	FromChain   chain.ID        `json:"fromChain"`
	ToChain     chain.ID        `json:"toChain"`
	Token       string          `json:"token"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient,omitempty"`
	SlippageBps int             `json:"slippageBps,omitempty"`
}

// DefaultSlippageBps is applied when the caller does not set a slippage.
const DefaultSlippageBps = 50

// BridgeRoute is one protocol's offer to perform a specific transfer.
type BridgeRoute struct {
	Protocol Protocol `json:"protocol"`

	// FeeRate is the protocol fee as a decimal fraction, e.g. 0.0005 for 0.05%
	FeeRate decimal.Decimal `json:"feeRate"`

	EstimatedTime TimeRange    `json:"estimatedTime"`
	Security      SecurityTier `json:"security"`

	// Amount bounds accepted by the protocol, in token units
	MinAmount decimal.Decimal `json:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount"`
}

// AcceptsAmount reports whether the amount falls within the route's bounds.
func (r BridgeRoute) AcceptsAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.MinAmount) && amount.LessThanOrEqual(r.MaxAmount)
}

// BridgeTransaction is an unsigned transaction descriptor ready for a wallet
// to sign. The core never stores or broadcasts it.
type BridgeTransaction struct {
	// To is the protocol's bridge contract, EIP-55 checksummed
	To string `json:"to"`

	// Data is the ABI-encoded bridge call as 0x-prefixed hex
	Data string `json:"data"`

	// Value is the native value to attach, as a wei decimal string
	Value string `json:"value"`

	GasLimit uint64   `json:"gasLimit"`
	ChainID  chain.ID `json:"chainId"`
}

// BridgeInfo is advisory display metadata returned alongside a built
// transaction. It must not feed back into status tracking.
type BridgeInfo struct {
	Protocol      Protocol `json:"protocol"`
	Route         string   `json:"route"`
	EstimatedTime string   `json:"estimatedTime"`
	Fees          string   `json:"fees"`
}

// Phase is the cross-chain settlement stage of a tracked transfer.
type Phase string

// Settlement phases; DESTINATION_CONFIRMED and FAILED are terminal.
const (
	PhasePending              Phase = "PENDING"
	PhaseSourceConfirmed      Phase = "SOURCE_CONFIRMED"
	PhaseDestinationConfirmed Phase = "DESTINATION_CONFIRMED"
	PhaseFailed               Phase = "FAILED"
)

// Terminal reports whether the phase can no longer advance.
func (p Phase) Terminal() bool {
	return p == PhaseDestinationConfirmed || p == PhaseFailed
}

// ExplorerLinks holds block-explorer URLs for both sides of a transfer.
type ExplorerLinks struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
}

// BridgeStatus is the normalized settlement state of a transfer,
// re-derived fresh from the adapter on every tracking call.
type BridgeStatus struct {
	Phase                 Phase         `json:"phase"`
	SourceConfirmations   int           `json:"sourceConfirmations"`
	DestinationTxHash     string        `json:"destinationTxHash,omitempty"`
	EstimatedCompletionAt time.Time     `json:"estimatedCompletionAt"`
	Explorer              ExplorerLinks `json:"explorerLinks"`
}

// ChainGasCost is the gas cost estimate for one side of a transfer.
type ChainGasCost struct {
	GasPrice  string `json:"gasPrice"` // e.g. "25 gwei"
	GasLimit  uint64 `json:"gasLimit"`
	TotalCost string `json:"totalCost"` // e.g. "0.005 ETH"
	USDCost   string `json:"usdCost"`
}

// BridgeFee is the protocol fee portion of a gas estimate.
type BridgeFee struct {
	Rate string `json:"rate"` // display form, e.g. "0.05%"

	// Amount is the fee in token units, fixed to six decimal places
	Amount  string `json:"amount"`
	USDCost string `json:"usdCost"`
}

// GasEstimate is the full cost picture for a transfer, recomputed per call.
type GasEstimate struct {
	PerChain     map[chain.ID]ChainGasCost `json:"perChain"`
	BridgeFee    BridgeFee                 `json:"bridgeFee"`
	TotalUSDCost string                    `json:"totalUsdCost"`
}
