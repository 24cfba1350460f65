// Package gas computes per-chain gas costs and the bridge fee for a
// prospective transfer. Pure computation over registry-supplied price data.
package gas

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/otel"
)

// Options holds the estimator's fee rate, gas limits and advisory thresholds.
type Options struct {
	// BridgeFeeRate is the protocol fee as a decimal fraction
	BridgeFeeRate decimal.Decimal

	// Gas limits assumed for the bridge call and the destination delivery
	SourceGasLimit      uint64
	DestinationGasLimit uint64

	// HighGasCeilingUSD triggers the high-gas recommendation when the source
	// side alone costs more
	HighGasCeilingUSD decimal.Decimal
}

// DefaultOptions returns the built-in estimator parameters.
func DefaultOptions() Options {
	return Options{
		BridgeFeeRate:       decimal.RequireFromString("0.0005"),
		SourceGasLimit:      250000,
		DestinationGasLimit: 150000,
		HighGasCeilingUSD:   decimal.NewFromInt(25),
	}
}

// Estimator derives GasEstimates from chain registry price data.
type Estimator struct {
	chains *chain.Registry
	opts   Options
}

func New(chains *chain.Registry, opts Options) *Estimator {
	return &Estimator{chains: chains, opts: opts}
}

// Estimate computes the full cost picture for bridging the amount between the
// two chains. Recomputed per call; amounts stay in decimal math throughout.
func (e *Estimator) Estimate(ctx context.Context, from, to chain.ID, amount decimal.Decimal) (model.GasEstimate, []string, error) {
	_, span := otel.Tracer().Start(ctx, "gas.Estimate")
	defer span.End()

	if from == to {
		return model.GasEstimate{}, nil, errs.Validation("toChain", "source and destination chain must differ")
	}
	if amount.IsNegative() {
		return model.GasEstimate{}, nil, errs.Validation("amount", "amount must be non-negative")
	}

	srcCost, srcUSD, err := e.chainCost(from, e.opts.SourceGasLimit)
	if err != nil {
		return model.GasEstimate{}, nil, err
	}
	dstCost, dstUSD, err := e.chainCost(to, e.opts.DestinationGasLimit)
	if err != nil {
		return model.GasEstimate{}, nil, err
	}

	// The token is treated as USD-stable for fee display
	feeAmount := amount.Mul(e.opts.BridgeFeeRate)
	fee := model.BridgeFee{
		Rate:    e.opts.BridgeFeeRate.Shift(2).String() + "%",
		Amount:  feeAmount.StringFixed(6),
		USDCost: feeAmount.StringFixed(2),
	}

	estimate := model.GasEstimate{
		PerChain: map[chain.ID]model.ChainGasCost{
			from: srcCost,
			to:   dstCost,
		},
		BridgeFee:    fee,
		TotalUSDCost: srcUSD.Add(dstUSD).Add(feeAmount).StringFixed(2),
	}

	return estimate, e.recommendations(from, srcUSD), nil
}

// chainCost prices one side of the transfer from the registry's reference data.
func (e *Estimator) chainCost(id chain.ID, gasLimit uint64) (model.ChainGasCost, decimal.Decimal, error) {
	md, ok := e.chains.Metadata(id)
	if !ok {
		return model.ChainGasCost{}, decimal.Zero, errs.UnknownChain(strconv.FormatUint(uint64(id), 10))
	}

	totalWei := md.GasPriceWei.Mul(decimal.NewFromInt(int64(gasLimit)))
	totalNative := totalWei.Shift(-int32(md.NativeDecimals))
	usd := totalNative.Mul(md.NativeUSD)

	return model.ChainGasCost{
		GasPrice:  md.GasPriceWei.Shift(-9).String() + " gwei",
		GasLimit:  gasLimit,
		TotalCost: totalNative.String() + " " + md.NativeSymbol,
		USDCost:   usd.StringFixed(2),
	}, usd, nil
}

// recommendations returns advisory lines; they never affect the numbers.
func (e *Estimator) recommendations(from chain.ID, srcUSD decimal.Decimal) []string {
	recs := []string{
		"Gas prices fluctuate. Re-estimate shortly before submitting the transaction.",
	}
	if srcUSD.GreaterThan(e.opts.HighGasCeilingUSD) {
		recs = append(recs, "Gas costs on "+e.chains.Name(from)+" are high right now. Consider bridging during off-peak hours.")
	}
	return recs
}
