package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

// hopSendSelector is the bridge's sendToL2 entrypoint selector.
var hopSendSelector = hexutil.MustDecode("0xdeace8f5")

// HopConfig holds the immutable configuration for the Hop adapter.
// Hop exposes no quote API here, so the configuration is always the quote.
type HopConfig struct {
	// Bridge is the Hop bridge contract on the source chain
	Bridge string

	FeeRate  decimal.Decimal
	Time     model.TimeRange
	Security model.SecurityTier

	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal

	GasLimit              uint64
	ConfirmationThreshold int
}

// DefaultHopConfig returns the built-in Hop parameters.
func DefaultHopConfig() HopConfig {
	return HopConfig{
		Bridge:                "0xb8901acB165ed027E32754E0FFe830802919727f",
		FeeRate:               decimal.RequireFromString("0.0008"), // 0.08%
		Time:                  model.TimeRange{Min: 10 * time.Minute, Max: 20 * time.Minute},
		Security:              model.SecurityMedium,
		MinAmount:             decimal.RequireFromString("0.1"),
		MaxAmount:             decimal.RequireFromString("100000"),
		GasLimit:              250000,
		ConfirmationThreshold: 12,
	}
}

// Hop implements the Adapter interface for the Hop protocol.
type Hop struct {
	cfg    HopConfig
	bridge common.Address
}

// NewHop creates a new Hop adapter.
func NewHop(cfg HopConfig, _ *http.Client) *Hop {
	return &Hop{cfg: cfg, bridge: common.HexToAddress(cfg.Bridge)}
}

func (h *Hop) Protocol() model.Protocol { return model.ProtocolHop }

func (h *Hop) Supports(from, to chain.ID, token string) bool {
	return from != to
}

func (h *Hop) Profile() Profile {
	return Profile{
		ConfirmationThreshold: h.cfg.ConfirmationThreshold,
		Time:                  h.cfg.Time,
		FeeRate:               h.cfg.FeeRate,
		Security:              h.cfg.Security,
	}
}

// Quote returns Hop's configured offer for the request.
func (h *Hop) Quote(ctx context.Context, req model.BridgeRequest) (model.BridgeRoute, error) {
	return model.BridgeRoute{
		Protocol:      model.ProtocolHop,
		FeeRate:       h.cfg.FeeRate,
		EstimatedTime: h.cfg.Time,
		Security:      h.cfg.Security,
		MinAmount:     h.cfg.MinAmount,
		MaxAmount:     h.cfg.MaxAmount,
	}, nil
}

// BuildTx encodes the unsigned bridge call for the request.
func (h *Hop) BuildTx(ctx context.Context, req model.BridgeRequest) (model.BridgeTransaction, error) {
	if !req.Amount.GreaterThanOrEqual(h.cfg.MinAmount) || !req.Amount.LessThanOrEqual(h.cfg.MaxAmount) {
		return model.BridgeTransaction{}, errs.Adapter(string(model.ProtocolHop),
			fmt.Errorf("amount %s outside protocol bounds [%s, %s]", req.Amount, h.cfg.MinAmount, h.cfg.MaxAmount))
	}

	amountWei := amountToWei(req.Amount, 18)
	return model.BridgeTransaction{
		To:       h.bridge.Hex(),
		Data:     encodeBridgeCall(hopSendSelector, req.ToChain, common.HexToAddress(req.Recipient), amountWei),
		Value:    amountWei.String(),
		GasLimit: h.cfg.GasLimit,
		ChainID:  req.FromChain,
	}, nil
}

// Status returns the fallback confirmation data. Hop has no status API wired
// here; the source side is reported settled, the destination not yet observed.
func (h *Hop) Status(ctx context.Context, txHash string) (Confirmation, error) {
	return Confirmation{
		SourceChain:         chain.Ethereum,
		SourceTxHash:        txHash,
		SourceConfirmations: h.cfg.ConfirmationThreshold,
	}, nil
}
