// Package adapter provides protocol-specific clients that translate normalized
// bridge requests into quote, transaction-encoding and status calls against
// the individual bridge protocols.
package adapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

// Confirmation is the raw cross-chain confirmation data reported by a
// protocol for one transfer. The status tracker derives the settlement
// phase from it; adapters never interpret it themselves.
type Confirmation struct {
	SourceChain         chain.ID
	SourceTxHash        string
	SourceConfirmations int

	DestinationChain      chain.ID
	DestinationTxHash     string
	DestinationConfirmed  bool

	// Failed is set when the protocol reports the transfer cannot complete
	// (reverted source tx, refund issued). A query that errors out is an
	// adapter error instead, never a Failed confirmation.
	Failed        bool
	FailureReason string
}

// Profile is the static behavioural profile of a protocol, injected at
// adapter construction and immutable afterwards.
type Profile struct {
	// ConfirmationThreshold is the number of source-chain confirmations the
	// protocol requires before it relays to the destination
	ConfirmationThreshold int

	// Time is the protocol's typical completion window
	Time model.TimeRange

	// FeeRate is the protocol fee as a decimal fraction
	FeeRate decimal.Decimal

	Security model.SecurityTier
}

// Adapter is the capability interface every bridge protocol client implements.
// Implementations are stateless and side-effect-free beyond outbound calls.
type Adapter interface {
	// Protocol returns the identifier the adapter is registered under
	Protocol() model.Protocol

	// Supports reports whether the adapter can serve the given corridor
	Supports(from, to chain.ID, token string) bool

	// Quote returns the protocol's offer for the request
	Quote(ctx context.Context, req model.BridgeRequest) (model.BridgeRoute, error)

	// BuildTx encodes the unsigned transaction for the request
	BuildTx(ctx context.Context, req model.BridgeRequest) (model.BridgeTransaction, error)

	// Status returns the raw confirmation data for a source transaction hash
	Status(ctx context.Context, txHash string) (Confirmation, error)

	// Profile returns the protocol's static behavioural profile
	Profile() Profile
}

// Registry maps protocol identifiers to their adapters. Read-only after
// construction, so safe for concurrent use.
type Registry struct {
	adapters map[model.Protocol]Adapter
	order    []model.Protocol
}

// NewRegistry builds a registry from the given adapters. Registration order
// is preserved and determines fan-out order in the aggregator.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[model.Protocol]Adapter, len(adapters))}
	for _, a := range adapters {
		p := a.Protocol()
		if _, dup := r.adapters[p]; dup {
			continue
		}
		r.adapters[p] = a
		r.order = append(r.order, p)
	}
	return r
}

// Get returns the adapter registered for a protocol.
func (r *Registry) Get(p model.Protocol) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, errs.UnsupportedProtocol(string(p))
	}
	return a, nil
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.adapters[p])
	}
	return out
}

// encodeBridgeCall packs the canonical (dstChainId, recipient, amount) bridge
// call used by the EVM router contracts. Deterministic for identical inputs.
func encodeBridgeCall(selector []byte, dstChain chain.ID, recipient common.Address, amountWei *big.Int) string {
	data := make([]byte, 0, 4+3*32)
	data = append(data, selector...)
	data = append(data, common.LeftPadBytes(new(big.Int).SetUint64(uint64(dstChain)).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(recipient.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amountWei.Bytes(), 32)...)
	return hexutil.Encode(data)
}

// amountToWei converts a token amount to the chain's smallest native unit.
func amountToWei(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}
