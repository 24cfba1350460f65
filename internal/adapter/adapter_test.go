package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

const testRecipient = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

func testRequest() model.BridgeRequest {
	return model.BridgeRequest{
		FromChain: chain.Ethereum,
		ToChain:   chain.Arbitrum,
		Token:     "USDC",
		Amount:    decimal.NewFromInt(5000),
		Recipient: testRecipient,
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	stargate := NewStargate(DefaultStargateConfig(), nil)
	across := NewAcross(DefaultAcrossConfig(), nil)
	hop := NewHop(DefaultHopConfig(), nil)

	r := NewRegistry(stargate, across, hop)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, model.ProtocolStargate, all[0].Protocol())
	assert.Equal(t, model.ProtocolAcross, all[1].Protocol())
	assert.Equal(t, model.ProtocolHop, all[2].Protocol())

	got, err := r.Get(model.ProtocolAcross)
	require.NoError(t, err)
	assert.Equal(t, across, got)

	_, err = r.Get(model.Protocol("wormhole"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindUnsupportedProtocol))
}

func TestRegistrySkipsDuplicates(t *testing.T) {
	first := NewHop(DefaultHopConfig(), nil)
	second := NewHop(DefaultHopConfig(), nil)

	r := NewRegistry(first, second)
	require.Len(t, r.All(), 1)

	got, err := r.Get(model.ProtocolHop)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestStaticQuotes(t *testing.T) {
	tests := []struct {
		adapter  Adapter
		feeRate  string
		security model.SecurityTier
	}{
		{NewStargate(DefaultStargateConfig(), nil), "0.0005", model.SecurityHigh},
		{NewAcross(DefaultAcrossConfig(), nil), "0.0004", model.SecurityHigh},
		{NewHop(DefaultHopConfig(), nil), "0.0008", model.SecurityMedium},
	}

	for _, tt := range tests {
		t.Run(string(tt.adapter.Protocol()), func(t *testing.T) {
			route, err := tt.adapter.Quote(context.Background(), testRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.adapter.Protocol(), route.Protocol)
			assert.Equal(t, tt.feeRate, route.FeeRate.String())
			assert.Equal(t, tt.security, route.Security)
		})
	}
}

func TestAcrossCorridorLimits(t *testing.T) {
	a := NewAcross(DefaultAcrossConfig(), nil)

	assert.True(t, a.Supports(chain.Ethereum, chain.Arbitrum, "USDC"))
	assert.False(t, a.Supports(chain.Ethereum, chain.Avalanche, "USDC"))
	assert.False(t, a.Supports(chain.BSC, chain.Polygon, "USDC"))
	assert.False(t, a.Supports(chain.Ethereum, chain.Ethereum, "USDC"))
}

func TestStargateLiveQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/quote", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"feeRate":"0.0003","minAmount":"5","maxAmount":"2000000"}`))
	}))
	defer srv.Close()

	cfg := DefaultStargateConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "secret"
	s := NewStargate(cfg, srv.Client())

	route, err := s.Quote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "0.0003", route.FeeRate.String())
	assert.Equal(t, "5", route.MinAmount.String())
	assert.Equal(t, "2000000", route.MaxAmount.String())
}

func TestStargateLiveQuoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultStargateConfig()
	cfg.BaseURL = srv.URL
	s := NewStargate(cfg, srv.Client())

	_, err := s.Quote(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindAdapter))
}

func TestAcrossSuggestedFeesScaling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/suggested-fees", r.URL.Path)
		require.Equal(t, "5000", r.URL.Query().Get("amount"))
		require.Equal(t, "1", r.URL.Query().Get("originChainId"))
		require.Equal(t, "42161", r.URL.Query().Get("destinationChainId"))
		// pct is scaled by 1e18: 4e14 / 1e18 = 0.0004
		w.Write([]byte(`{"totalRelayFee":{"pct":"400000000000000"}}`))
	}))
	defer srv.Close()

	cfg := DefaultAcrossConfig()
	cfg.BaseURL = srv.URL
	a := NewAcross(cfg, srv.Client())

	route, err := a.Quote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, route.FeeRate.Equal(decimal.RequireFromString("0.0004")), "got %s", route.FeeRate)
}

func TestStargateStatusParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/v1/tx/"))
		w.Write([]byte(`{"srcChainId":1,"dstChainId":42161,"srcConfirmations":15,"dstTxHash":"0xdef","status":"DELIVERED"}`))
	}))
	defer srv.Close()

	cfg := DefaultStargateConfig()
	cfg.BaseURL = srv.URL
	s := NewStargate(cfg, srv.Client())

	conf, err := s.Status(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, chain.Ethereum, conf.SourceChain)
	assert.Equal(t, chain.Arbitrum, conf.DestinationChain)
	assert.Equal(t, 15, conf.SourceConfirmations)
	assert.Equal(t, "0xdef", conf.DestinationTxHash)
	assert.True(t, conf.DestinationConfirmed)
	assert.False(t, conf.Failed)
}

func TestStargateStatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"srcChainId":1,"srcConfirmations":3,"status":"FAILED","reason":"refunded"}`))
	}))
	defer srv.Close()

	cfg := DefaultStargateConfig()
	cfg.BaseURL = srv.URL
	s := NewStargate(cfg, srv.Client())

	conf, err := s.Status(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, conf.Failed)
	assert.Equal(t, "refunded", conf.FailureReason)
}

func TestAcrossStatusParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/deposit/status", r.URL.Path)
		require.Equal(t, "0xabc", r.URL.Query().Get("depositTxHash"))
		w.Write([]byte(`{"status":"filled","originChainId":1,"destinationChainId":137,"depositConfirmations":8,"fillTx":"0xfff"}`))
	}))
	defer srv.Close()

	cfg := DefaultAcrossConfig()
	cfg.BaseURL = srv.URL
	a := NewAcross(cfg, srv.Client())

	conf, err := a.Status(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, chain.Polygon, conf.DestinationChain)
	assert.Equal(t, "0xfff", conf.DestinationTxHash)
	assert.True(t, conf.DestinationConfirmed)
}

func TestFallbackStatus(t *testing.T) {
	s := NewStargate(DefaultStargateConfig(), nil)

	conf, err := s.Status(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", conf.SourceTxHash)
	assert.Equal(t, 12, conf.SourceConfirmations)
	assert.False(t, conf.DestinationConfirmed)
}

func TestBuildTxEncoding(t *testing.T) {
	s := NewStargate(DefaultStargateConfig(), nil)

	tx, err := s.BuildTx(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "0x8731d54E9D02c286767d56ac03e8037C07e01e98", tx.To)
	assert.Equal(t, chain.Ethereum, tx.ChainID)
	assert.Equal(t, uint64(200000), tx.GasLimit)

	// 5000 tokens in wei
	assert.Equal(t, "5000000000000000000000", tx.Value)

	// selector + dstChainId + recipient + amount, each arg 32 bytes
	require.Len(t, tx.Data, 2+8+3*64)
	assert.True(t, strings.HasPrefix(tx.Data, "0x9fbf10fc"))
	assert.Contains(t, strings.ToLower(tx.Data), strings.ToLower(testRecipient[2:]))

	again, err := s.BuildTx(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, tx, again)
}

func TestBuildTxBounds(t *testing.T) {
	tests := []struct {
		name    string
		adapter Adapter
		amount  string
		wantErr bool
	}{
		{"stargate below min", NewStargate(DefaultStargateConfig(), nil), "5", true},
		{"stargate at min", NewStargate(DefaultStargateConfig(), nil), "10", false},
		{"stargate above max", NewStargate(DefaultStargateConfig(), nil), "1000001", true},
		{"across above max", NewAcross(DefaultAcrossConfig(), nil), "500001", true},
		{"hop at min", NewHop(DefaultHopConfig(), nil), "0.1", false},
		{"hop below min", NewHop(DefaultHopConfig(), nil), "0.05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			req.Amount = decimal.RequireFromString(tt.amount)

			_, err := tt.adapter.BuildTx(context.Background(), req)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.KindAdapter))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAmountToWeiTruncates(t *testing.T) {
	// sub-wei precision is dropped, never rounded up
	got := amountToWei(decimal.RequireFromString("0.0000000000000000019"), 18)
	assert.Equal(t, "1", got.String())
}
