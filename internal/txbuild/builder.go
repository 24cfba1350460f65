// Package txbuild turns a validated bridge request into an unsigned
// transaction for one specific protocol. It never signs or broadcasts.
package txbuild

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-route-ea/internal/adapter"
	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/otel"
	"github.com/yourorg/bridge-route-ea/internal/validation"
)

// Builder dispatches transaction encoding to the protocol's adapter.
type Builder struct {
	registry *adapter.Registry
	chains   *chain.Registry
}

func New(registry *adapter.Registry, chains *chain.Registry) *Builder {
	return &Builder{registry: registry, chains: chains}
}

// Build validates the request and asks the protocol's adapter to encode the
// unsigned transaction. The returned BridgeInfo is display metadata only.
func (b *Builder) Build(ctx context.Context, req model.BridgeRequest, protocol model.Protocol) (model.BridgeTransaction, model.BridgeInfo, error) {
	ctx, span := otel.Tracer().Start(ctx, "txbuild.Build")
	defer span.End()

	if err := validation.ValidateRequest(req); err != nil {
		return model.BridgeTransaction{}, model.BridgeInfo{}, err
	}
	if err := validation.RequireRecipient(req); err != nil {
		return model.BridgeTransaction{}, model.BridgeInfo{}, err
	}

	ad, err := b.registry.Get(protocol)
	if err != nil {
		return model.BridgeTransaction{}, model.BridgeInfo{}, err
	}

	if req.SlippageBps == 0 {
		req.SlippageBps = model.DefaultSlippageBps
	}

	tx, err := ad.BuildTx(ctx, req)
	if err != nil {
		otel.RecordError(ctx, err)
		return model.BridgeTransaction{}, model.BridgeInfo{}, err
	}

	profile := ad.Profile()
	info := model.BridgeInfo{
		Protocol:      protocol,
		Route:         fmt.Sprintf("%s → %s", b.chains.Name(req.FromChain), b.chains.Name(req.ToChain)),
		EstimatedTime: profile.Time.String(),
		Fees:          req.Amount.Mul(profile.FeeRate).StringFixed(6) + " " + req.Token,
	}

	logrus.WithFields(logrus.Fields{
		"protocol":  protocol,
		"fromChain": req.FromChain,
		"toChain":   req.ToChain,
		"gasLimit":  tx.GasLimit,
	}).Info("Bridge transaction built")

	return tx, info, nil
}
