package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

// acrossDepositSelector is the SpokePool deposit entrypoint selector.
var acrossDepositSelector = hexutil.MustDecode("0x7b939232")

// AcrossConfig holds the immutable configuration for the Across adapter.
type AcrossConfig struct {
	// SpokePool is the Across spoke pool contract on the source chain
	SpokePool string

	FeeRate  decimal.Decimal
	Time     model.TimeRange
	Security model.SecurityTier

	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal

	GasLimit              uint64
	ConfirmationThreshold int

	// Chains limits the corridors Across serves; both endpoints must be
	// listed. Empty means every registry chain.
	Chains []chain.ID

	// BaseURL of the Across fee/status API; empty keeps the adapter on the
	// static fallback configuration
	BaseURL string
}

// DefaultAcrossConfig returns the built-in Across parameters.
func DefaultAcrossConfig() AcrossConfig {
	return AcrossConfig{
		SpokePool:             "0x4D9079Bb4165aeb4084c526a32695dCfd2F77381",
		FeeRate:               decimal.RequireFromString("0.0004"), // 0.04%
		Time:                  model.TimeRange{Min: 1 * time.Minute, Max: 3 * time.Minute},
		Security:              model.SecurityHigh,
		MinAmount:             decimal.RequireFromString("1"),
		MaxAmount:             decimal.RequireFromString("500000"),
		GasLimit:              150000,
		ConfirmationThreshold: 6,
		Chains: []chain.ID{
			chain.Ethereum, chain.Optimism, chain.Polygon, chain.Base, chain.Arbitrum,
		},
	}
}

// Across implements the Adapter interface for the Across protocol.
type Across struct {
	cfg        AcrossConfig
	spokePool  common.Address
	supported  map[chain.ID]bool
	httpClient *http.Client
}

// NewAcross creates a new Across adapter. A nil httpClient falls back to the
// shared retrying client.
func NewAcross(cfg AcrossConfig, httpClient *http.Client) *Across {
	if httpClient == nil {
		httpClient = StandardClient()
	}
	var supported map[chain.ID]bool
	if len(cfg.Chains) > 0 {
		supported = make(map[chain.ID]bool, len(cfg.Chains))
		for _, c := range cfg.Chains {
			supported[c] = true
		}
	}
	return &Across{cfg: cfg, spokePool: common.HexToAddress(cfg.SpokePool), supported: supported, httpClient: httpClient}
}

func (a *Across) Protocol() model.Protocol { return model.ProtocolAcross }

// Supports reports corridor support against the configured chain list.
func (a *Across) Supports(from, to chain.ID, token string) bool {
	if from == to {
		return false
	}
	if a.supported == nil {
		return true
	}
	return a.supported[from] && a.supported[to]
}

func (a *Across) Profile() Profile {
	return Profile{
		ConfirmationThreshold: a.cfg.ConfirmationThreshold,
		Time:                  a.cfg.Time,
		FeeRate:               a.cfg.FeeRate,
		Security:              a.cfg.Security,
	}
}

// Quote returns Across's offer for the request. With an API endpoint
// configured the relay fee comes from the suggested-fees endpoint; otherwise
// the static configuration is the quote.
func (a *Across) Quote(ctx context.Context, req model.BridgeRequest) (model.BridgeRoute, error) {
	route := model.BridgeRoute{
		Protocol:      model.ProtocolAcross,
		FeeRate:       a.cfg.FeeRate,
		EstimatedTime: a.cfg.Time,
		Security:      a.cfg.Security,
		MinAmount:     a.cfg.MinAmount,
		MaxAmount:     a.cfg.MaxAmount,
	}
	if a.cfg.BaseURL == "" {
		return route, nil
	}

	fee, err := a.fetchSuggestedFees(ctx, req)
	if err != nil {
		return model.BridgeRoute{}, errs.Adapter(string(model.ProtocolAcross), err)
	}
	if !fee.IsZero() {
		route.FeeRate = fee
	}
	return route, nil
}

// fetchSuggestedFees queries the suggested-fees endpoint and returns the
// total relay fee as a decimal fraction.
func (a *Across) fetchSuggestedFees(ctx context.Context, req model.BridgeRequest) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("inputToken", req.Token)
	q.Set("outputToken", req.Token)
	q.Set("amount", req.Amount.String())
	q.Set("originChainId", fmt.Sprintf("%d", req.FromChain))
	q.Set("destinationChainId", fmt.Sprintf("%d", req.ToChain))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/suggested-fees?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error creating request: %w", err)
	}

	logrus.Debugf("Fetching suggested fees from Across: %s", a.cfg.BaseURL)
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error fetching fees from Across: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, fmt.Errorf("Across API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	// totalRelayFee.pct is scaled by 1e18 on the wire
	var out struct {
		TotalRelayFee struct {
			Pct decimal.Decimal `json:"pct"`
		} `json:"totalRelayFee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("error decoding response: %w", err)
	}
	return out.TotalRelayFee.Pct.Shift(-18), nil
}

// BuildTx encodes the unsigned spoke pool deposit for the request.
func (a *Across) BuildTx(ctx context.Context, req model.BridgeRequest) (model.BridgeTransaction, error) {
	if !req.Amount.GreaterThanOrEqual(a.cfg.MinAmount) || !req.Amount.LessThanOrEqual(a.cfg.MaxAmount) {
		return model.BridgeTransaction{}, errs.Adapter(string(model.ProtocolAcross),
			fmt.Errorf("amount %s outside protocol bounds [%s, %s]", req.Amount, a.cfg.MinAmount, a.cfg.MaxAmount))
	}

	amountWei := amountToWei(req.Amount, 18)
	return model.BridgeTransaction{
		To:       a.spokePool.Hex(),
		Data:     encodeBridgeCall(acrossDepositSelector, req.ToChain, common.HexToAddress(req.Recipient), amountWei),
		Value:    amountWei.String(),
		GasLimit: a.cfg.GasLimit,
		ChainID:  req.FromChain,
	}, nil
}

// acrossStatusResponse matches the deposit status API response shape.
type acrossStatusResponse struct {
	Status               string `json:"status"` // pending, filled, expired
	OriginChainID        uint64 `json:"originChainId"`
	DestinationChainID   uint64 `json:"destinationChainId"`
	DepositConfirmations int    `json:"depositConfirmations"`
	FillTx               string `json:"fillTx"`
}

// Status returns the raw confirmation data for a deposit transaction.
func (a *Across) Status(ctx context.Context, txHash string) (Confirmation, error) {
	if a.cfg.BaseURL == "" {
		return Confirmation{
			SourceChain:         chain.Ethereum,
			SourceTxHash:        txHash,
			SourceConfirmations: a.cfg.ConfirmationThreshold,
		}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.cfg.BaseURL+"/deposit/status?depositTxHash="+url.QueryEscape(txHash), nil)
	if err != nil {
		return Confirmation{}, errs.Adapter(string(model.ProtocolAcross), err)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return Confirmation{}, errs.Adapter(string(model.ProtocolAcross), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Confirmation{}, errs.Adapter(string(model.ProtocolAcross),
			fmt.Errorf("Across API error: status %d, body: %s", resp.StatusCode, string(body)))
	}

	var out acrossStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Confirmation{}, errs.Adapter(string(model.ProtocolAcross), err)
	}

	return Confirmation{
		SourceChain:          chain.ID(out.OriginChainID),
		SourceTxHash:         txHash,
		SourceConfirmations:  out.DepositConfirmations,
		DestinationChain:     chain.ID(out.DestinationChainID),
		DestinationTxHash:    out.FillTx,
		DestinationConfirmed: out.Status == "filled",
		Failed:               out.Status == "expired",
	}, nil
}
