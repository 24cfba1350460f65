package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

// stargateSwapSelector is the router's swap entrypoint selector.
var stargateSwapSelector = hexutil.MustDecode("0x9fbf10fc")

// StargateConfig holds the immutable configuration for the Stargate adapter.
// The defaults reproduce the protocol's published parameters and act as the
// fallback quote when no API endpoint is configured.
type StargateConfig struct {
	// Router is the Stargate router contract on the source chain
	Router string

	FeeRate  decimal.Decimal
	Time     model.TimeRange
	Security model.SecurityTier

	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal

	GasLimit              uint64
	ConfirmationThreshold int

	// BaseURL of the Stargate quote/status API; empty keeps the adapter on
	// the static fallback configuration
	BaseURL string
	APIKey  string
}

// DefaultStargateConfig returns the built-in Stargate parameters.
func DefaultStargateConfig() StargateConfig {
	return StargateConfig{
		Router:                "0x8731d54E9D02c286767d56ac03e8037C07e01e98",
		FeeRate:               decimal.RequireFromString("0.0005"), // 0.05%
		Time:                  model.TimeRange{Min: 2 * time.Minute, Max: 5 * time.Minute},
		Security:              model.SecurityHigh,
		MinAmount:             decimal.RequireFromString("10"),
		MaxAmount:             decimal.RequireFromString("1000000"),
		GasLimit:              200000,
		ConfirmationThreshold: 12,
	}
}

// Stargate implements the Adapter interface for the Stargate protocol.
type Stargate struct {
	cfg        StargateConfig
	router     common.Address
	httpClient *http.Client
}

// NewStargate creates a new Stargate adapter. A nil httpClient falls back to
// the shared retrying client.
func NewStargate(cfg StargateConfig, httpClient *http.Client) *Stargate {
	if httpClient == nil {
		httpClient = StandardClient()
	}
	return &Stargate{cfg: cfg, router: common.HexToAddress(cfg.Router), httpClient: httpClient}
}

func (s *Stargate) Protocol() model.Protocol { return model.ProtocolStargate }

// Supports reports corridor support. Stargate pools exist on every chain in
// the registry, so any cross-chain pair is accepted.
func (s *Stargate) Supports(from, to chain.ID, token string) bool {
	return from != to
}

func (s *Stargate) Profile() Profile {
	return Profile{
		ConfirmationThreshold: s.cfg.ConfirmationThreshold,
		Time:                  s.cfg.Time,
		FeeRate:               s.cfg.FeeRate,
		Security:              s.cfg.Security,
	}
}

// Quote returns Stargate's offer for the request. With an API endpoint
// configured the fee and bounds come from a live quote; otherwise the static
// configuration is the quote.
func (s *Stargate) Quote(ctx context.Context, req model.BridgeRequest) (model.BridgeRoute, error) {
	route := model.BridgeRoute{
		Protocol:      model.ProtocolStargate,
		FeeRate:       s.cfg.FeeRate,
		EstimatedTime: s.cfg.Time,
		Security:      s.cfg.Security,
		MinAmount:     s.cfg.MinAmount,
		MaxAmount:     s.cfg.MaxAmount,
	}
	if s.cfg.BaseURL == "" {
		return route, nil
	}

	live, err := s.fetchQuote(ctx, req)
	if err != nil {
		return model.BridgeRoute{}, errs.Adapter(string(model.ProtocolStargate), err)
	}
	if !live.FeeRate.IsZero() {
		route.FeeRate = live.FeeRate
	}
	if !live.MinAmount.IsZero() {
		route.MinAmount = live.MinAmount
	}
	if !live.MaxAmount.IsZero() {
		route.MaxAmount = live.MaxAmount
	}
	return route, nil
}

// stargateQuoteResponse matches the quote API response shape.
type stargateQuoteResponse struct {
	FeeRate   decimal.Decimal `json:"feeRate"`
	MinAmount decimal.Decimal `json:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount"`
}

func (s *Stargate) fetchQuote(ctx context.Context, req model.BridgeRequest) (stargateQuoteResponse, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"srcChainId": req.FromChain,
		"dstChainId": req.ToChain,
		"token":      req.Token,
		"amount":     req.Amount,
	})
	if err != nil {
		return stargateQuoteResponse{}, fmt.Errorf("error encoding quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v1/quote", bytes.NewReader(payload))
	if err != nil {
		return stargateQuoteResponse{}, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	logrus.Debugf("Fetching quote from Stargate: %s", s.cfg.BaseURL)
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return stargateQuoteResponse{}, fmt.Errorf("error fetching quote from Stargate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return stargateQuoteResponse{}, fmt.Errorf("Stargate API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out stargateQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return stargateQuoteResponse{}, fmt.Errorf("error decoding response: %w", err)
	}
	return out, nil
}

// BuildTx encodes the unsigned router call for the request.
func (s *Stargate) BuildTx(ctx context.Context, req model.BridgeRequest) (model.BridgeTransaction, error) {
	if !req.Amount.GreaterThanOrEqual(s.cfg.MinAmount) || !req.Amount.LessThanOrEqual(s.cfg.MaxAmount) {
		return model.BridgeTransaction{}, errs.Adapter(string(model.ProtocolStargate),
			fmt.Errorf("amount %s outside protocol bounds [%s, %s]", req.Amount, s.cfg.MinAmount, s.cfg.MaxAmount))
	}

	amountWei := amountToWei(req.Amount, 18)
	return model.BridgeTransaction{
		To:       s.router.Hex(),
		Data:     encodeBridgeCall(stargateSwapSelector, req.ToChain, common.HexToAddress(req.Recipient), amountWei),
		Value:    amountWei.String(),
		GasLimit: s.cfg.GasLimit,
		ChainID:  req.FromChain,
	}, nil
}

// stargateStatusResponse matches the transfer status API response shape.
type stargateStatusResponse struct {
	SrcChainID       uint64 `json:"srcChainId"`
	DstChainID       uint64 `json:"dstChainId"`
	SrcConfirmations int    `json:"srcConfirmations"`
	DstTxHash        string `json:"dstTxHash"`
	Status           string `json:"status"` // PENDING, DELIVERED, FAILED
	Reason           string `json:"reason"`
}

// Status returns the raw confirmation data for a source transaction.
func (s *Stargate) Status(ctx context.Context, txHash string) (Confirmation, error) {
	if s.cfg.BaseURL == "" {
		// Fallback configuration has no live status source; report the source
		// side as settled and the destination as not yet observed.
		return Confirmation{
			SourceChain:         chain.Ethereum,
			SourceTxHash:        txHash,
			SourceConfirmations: s.cfg.ConfirmationThreshold,
		}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/v1/tx/"+txHash, nil)
	if err != nil {
		return Confirmation{}, errs.Adapter(string(model.ProtocolStargate), err)
	}
	if s.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return Confirmation{}, errs.Adapter(string(model.ProtocolStargate), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Confirmation{}, errs.Adapter(string(model.ProtocolStargate),
			fmt.Errorf("Stargate API error: status %d, body: %s", resp.StatusCode, string(body)))
	}

	var out stargateStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Confirmation{}, errs.Adapter(string(model.ProtocolStargate), err)
	}

	return Confirmation{
		SourceChain:          chain.ID(out.SrcChainID),
		SourceTxHash:         txHash,
		SourceConfirmations:  out.SrcConfirmations,
		DestinationChain:     chain.ID(out.DstChainID),
		DestinationTxHash:    out.DstTxHash,
		DestinationConfirmed: out.Status == "DELIVERED",
		Failed:               out.Status == "FAILED",
		FailureReason:        out.Reason,
	}, nil
}
