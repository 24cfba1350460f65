// Package track derives the cross-chain settlement phase of a bridge
// transfer. Tracking is stateless: every call queries the protocol adapter
// and re-derives the phase from the raw confirmation data.
package track

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-route-ea/internal/adapter"
	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/otel"
	"github.com/yourorg/bridge-route-ea/internal/validation"
)

// Tracker resolves transfer status through the protocol adapters.
type Tracker struct {
	registry *adapter.Registry
	chains   *chain.Registry
	now      func() time.Time
}

func New(registry *adapter.Registry, chains *chain.Registry) *Tracker {
	return &Tracker{registry: registry, chains: chains, now: time.Now}
}

// Track returns the current settlement state of a transfer identified by its
// source transaction hash. A query failure is an adapter error; a transfer
// the protocol reports as failed is a successful query with phase FAILED.
func (t *Tracker) Track(ctx context.Context, txHash string, protocol model.Protocol) (model.BridgeStatus, error) {
	ctx, span := otel.Tracer().Start(ctx, "track.Track")
	defer span.End()

	if err := validation.ValidateTxHash(txHash); err != nil {
		return model.BridgeStatus{}, err
	}

	ad, err := t.registry.Get(protocol)
	if err != nil {
		return model.BridgeStatus{}, err
	}

	conf, err := ad.Status(ctx, txHash)
	if err != nil {
		otel.RecordError(ctx, err)
		return model.BridgeStatus{}, err
	}

	profile := ad.Profile()
	status := model.BridgeStatus{
		Phase:               derivePhase(conf, profile.ConfirmationThreshold),
		SourceConfirmations: conf.SourceConfirmations,
		DestinationTxHash:   conf.DestinationTxHash,
		Explorer: model.ExplorerLinks{
			Source:      t.chains.TxURL(conf.SourceChain, conf.SourceTxHash),
			Destination: t.chains.TxURL(conf.DestinationChain, conf.DestinationTxHash),
		},
	}
	status.EstimatedCompletionAt = t.estimateCompletion(status.Phase, profile.Time)

	logrus.WithFields(logrus.Fields{
		"protocol": protocol,
		"txHash":   txHash,
		"phase":    status.Phase,
	}).Debug("Bridge status derived")

	return status, nil
}

// derivePhase maps raw confirmation data onto the settlement phase.
// Failure dominates, then destination settlement, then the source threshold.
func derivePhase(conf adapter.Confirmation, threshold int) model.Phase {
	switch {
	case conf.Failed:
		return model.PhaseFailed
	case conf.DestinationConfirmed:
		return model.PhaseDestinationConfirmed
	case conf.SourceConfirmations >= threshold:
		return model.PhaseSourceConfirmed
	default:
		return model.PhasePending
	}
}

// estimateCompletion projects when the transfer should settle. Terminal
// phases report the query time, the source-confirmed phase the remaining
// relay window, and pending transfers the full protocol window.
func (t *Tracker) estimateCompletion(phase model.Phase, window model.TimeRange) time.Time {
	now := t.now()
	switch phase {
	case model.PhaseDestinationConfirmed, model.PhaseFailed:
		return now
	case model.PhaseSourceConfirmed:
		return now.Add(window.Max - window.Min)
	default:
		return now.Add(window.Max)
	}
}
