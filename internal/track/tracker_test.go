package track

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/bridge-route-ea/internal/adapter"
	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
)

const testTxHash = "0x14734be56d29e0f9c0c1f152b00a8e659cb481137eddd07ec6d34b247a5c8b34"

type statusAdapter struct {
	conf adapter.Confirmation
	err  error
}

func (s *statusAdapter) Protocol() model.Protocol { return model.ProtocolStargate }

func (s *statusAdapter) Supports(from, to chain.ID, token string) bool { return true }

func (s *statusAdapter) Quote(ctx context.Context, req model.BridgeRequest) (model.BridgeRoute, error) {
	return model.BridgeRoute{}, errors.New("not implemented")
}

func (s *statusAdapter) BuildTx(ctx context.Context, req model.BridgeRequest) (model.BridgeTransaction, error) {
	return model.BridgeTransaction{}, errors.New("not implemented")
}

func (s *statusAdapter) Status(ctx context.Context, txHash string) (adapter.Confirmation, error) {
	if s.err != nil {
		return adapter.Confirmation{}, s.err
	}
	conf := s.conf
	conf.SourceTxHash = txHash
	return conf, nil
}

func (s *statusAdapter) Profile() adapter.Profile {
	return adapter.Profile{
		ConfirmationThreshold: 12,
		Time:                  model.TimeRange{Min: 2 * time.Minute, Max: 5 * time.Minute},
		Security:              model.SecurityHigh,
	}
}

func newTracker(ad adapter.Adapter) *Tracker {
	return New(adapter.NewRegistry(ad), chain.DefaultRegistry())
}

func TestTrackPhaseDerivation(t *testing.T) {
	tests := []struct {
		name string
		conf adapter.Confirmation
		want model.Phase
	}{
		{
			name: "below threshold is pending",
			conf: adapter.Confirmation{SourceChain: chain.Ethereum, SourceConfirmations: 5},
			want: model.PhasePending,
		},
		{
			name: "at threshold is source confirmed",
			conf: adapter.Confirmation{SourceChain: chain.Ethereum, SourceConfirmations: 12},
			want: model.PhaseSourceConfirmed,
		},
		{
			name: "destination settles the transfer",
			conf: adapter.Confirmation{
				SourceChain:          chain.Ethereum,
				SourceConfirmations:  20,
				DestinationChain:     chain.Polygon,
				DestinationTxHash:    "0xabc",
				DestinationConfirmed: true,
			},
			want: model.PhaseDestinationConfirmed,
		},
		{
			name: "failure dominates destination data",
			conf: adapter.Confirmation{
				SourceChain:          chain.Ethereum,
				SourceConfirmations:  20,
				DestinationConfirmed: true,
				Failed:               true,
				FailureReason:        "refunded",
			},
			want: model.PhaseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTracker(&statusAdapter{conf: tt.conf})
			status, err := tr.Track(context.Background(), testTxHash, model.ProtocolStargate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Phase)
		})
	}
}

func TestTrackExplorerLinks(t *testing.T) {
	tr := newTracker(&statusAdapter{conf: adapter.Confirmation{
		SourceChain:          chain.Ethereum,
		SourceConfirmations:  20,
		DestinationChain:     chain.Polygon,
		DestinationTxHash:    "0xdef",
		DestinationConfirmed: true,
	}})

	status, err := tr.Track(context.Background(), testTxHash, model.ProtocolStargate)
	require.NoError(t, err)

	assert.Equal(t, "https://etherscan.io/tx/"+testTxHash, status.Explorer.Source)
	assert.Equal(t, "https://polygonscan.com/tx/0xdef", status.Explorer.Destination)
}

func TestTrackNoDestinationLinkWhileRelaying(t *testing.T) {
	tr := newTracker(&statusAdapter{conf: adapter.Confirmation{
		SourceChain:         chain.Ethereum,
		SourceConfirmations: 12,
	}})

	status, err := tr.Track(context.Background(), testTxHash, model.ProtocolStargate)
	require.NoError(t, err)

	assert.Equal(t, model.PhaseSourceConfirmed, status.Phase)
	assert.Empty(t, status.Explorer.Destination)
	assert.Empty(t, status.DestinationTxHash)
}

func TestTrackEstimatedCompletion(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		conf adapter.Confirmation
		want time.Time
	}{
		{
			name: "pending gets the full window",
			conf: adapter.Confirmation{SourceChain: chain.Ethereum},
			want: frozen.Add(5 * time.Minute),
		},
		{
			name: "source confirmed gets the remaining relay window",
			conf: adapter.Confirmation{SourceChain: chain.Ethereum, SourceConfirmations: 12},
			want: frozen.Add(3 * time.Minute),
		},
		{
			name: "terminal reports the query time",
			conf: adapter.Confirmation{SourceChain: chain.Ethereum, Failed: true},
			want: frozen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTracker(&statusAdapter{conf: tt.conf})
			tr.now = func() time.Time { return frozen }

			status, err := tr.Track(context.Background(), testTxHash, model.ProtocolStargate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.EstimatedCompletionAt)
		})
	}
}

func TestTrackAdapterError(t *testing.T) {
	cause := errors.New("connection refused")
	tr := newTracker(&statusAdapter{err: errs.Adapter("stargate", cause)})

	_, err := tr.Track(context.Background(), testTxHash, model.ProtocolStargate)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindAdapter))
}

func TestTrackUnsupportedProtocol(t *testing.T) {
	tr := newTracker(&statusAdapter{})

	_, err := tr.Track(context.Background(), testTxHash, model.Protocol("wormhole"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindUnsupportedProtocol))
}

func TestTrackRejectsMalformedHash(t *testing.T) {
	tr := newTracker(&statusAdapter{})

	for _, hash := range []string{"", "0x123", "not-a-hash"} {
		_, err := tr.Track(context.Background(), hash, model.ProtocolStargate)
		require.Error(t, err, "hash %q", hash)
		assert.True(t, errs.Is(err, errs.KindValidation))
	}
}
