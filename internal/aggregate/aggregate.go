// Package aggregate fans a bridge request out to every registered protocol
// adapter, collects the quotes and ranks them into a single ordered list.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-route-ea/internal/adapter"
	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/circuitbreaker"
	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/otel"
	"github.com/yourorg/bridge-route-ea/internal/validation"
)

// Options konfiguriert die Aggregation und die Schwellwerte für Warnungen
type Options struct {
	// AdapterTimeout begrenzt jede einzelne Quote-Anfrage
	AdapterTimeout time.Duration

	// LargeTransferThreshold: Beträge darüber lösen eine Split-Warnung aus
	LargeTransferThreshold decimal.Decimal

	// HighFeeChains: Ketten, deren Beteiligung eine Off-Peak-Warnung auslöst
	HighFeeChains map[chain.ID]bool

	// OnAdapterDrop wird für jeden verworfenen Adapter aufgerufen (Monitoring)
	OnAdapterDrop func(protocol model.Protocol, err error)
}

// DefaultOptions liefert sinnvolle Standardwerte für die Aggregation
func DefaultOptions() Options {
	return Options{
		AdapterTimeout:         10 * time.Second,
		LargeTransferThreshold: decimal.NewFromInt(10000),
		HighFeeChains:          map[chain.ID]bool{chain.Ethereum: true},
	}
}

// Aggregator sammelt Quotes von allen Protokoll-Adaptern und ordnet sie
// deterministisch nach Gebühr, Zeit und Sicherheitsstufe
type Aggregator struct {
	registry *adapter.Registry
	chains   *chain.Registry
	opts     Options
	breakers map[model.Protocol]*circuitbreaker.Breaker
}

// New erstellt einen neuen Aggregator
func New(registry *adapter.Registry, chains *chain.Registry, opts Options) *Aggregator {
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = DefaultOptions().AdapterTimeout
	}
	return &Aggregator{registry: registry, chains: chains, opts: opts}
}

// WithBreakers hinterlegt pro Adapter einen Circuit Breaker und gibt den
// Aggregator zurück
func (a *Aggregator) WithBreakers(breakers map[model.Protocol]*circuitbreaker.Breaker) *Aggregator {
	a.breakers = breakers
	return a
}

// quoteResult hält das Ergebnis einer einzelnen Adapter-Anfrage
type quoteResult struct {
	protocol model.Protocol
	route    model.BridgeRoute
	err      error
	skipped  bool
}

// FindRoutes befragt alle zuständigen Adapter parallel, filtert Routen
// außerhalb der Betragsgrenzen und liefert die Routen sortiert zurück.
// Das erste Element ist die empfohlene Route. Einzelne Adapter-Fehler
// werden verworfen; erst wenn keine Route übrig bleibt, schlägt der
// Aufruf mit NoRoute fehl.
func (a *Aggregator) FindRoutes(ctx context.Context, req model.BridgeRequest) ([]model.BridgeRoute, []string, error) {
	ctx, span := otel.Tracer().Start(ctx, "aggregate.FindRoutes")
	defer span.End()

	if err := validation.ValidateRequest(req); err != nil {
		return nil, nil, err
	}

	// Nur Adapter befragen, die den Korridor bedienen
	var candidates []adapter.Adapter
	for _, ad := range a.registry.All() {
		if ad.Supports(req.FromChain, req.ToChain, req.Token) {
			candidates = append(candidates, ad)
		}
	}
	if len(candidates) == 0 {
		return nil, nil, errs.NoRoute()
	}

	// Fan-out: feste Ergebnis-Slots halten die Registrierungsreihenfolge
	// deterministisch, unabhängig von der Antwortreihenfolge
	results := make([]quoteResult, len(candidates))
	var wg sync.WaitGroup
	for i, ad := range candidates {
		wg.Add(1)
		go func(i int, ad adapter.Adapter) {
			defer wg.Done()
			results[i] = a.quoteOne(ctx, ad, req)
		}(i, ad)
	}
	wg.Wait()

	routes := make([]model.BridgeRoute, 0, len(results))
	for _, res := range results {
		switch {
		case res.skipped:
			logrus.Debugf("Adapter %s skipped: circuit open", res.protocol)
		case res.err != nil:
			logrus.WithFields(logrus.Fields{
				"protocol": res.protocol,
				"error":    res.err,
			}).Warn("Adapter dropped from aggregation")
			if a.opts.OnAdapterDrop != nil {
				a.opts.OnAdapterDrop(res.protocol, res.err)
			}
		case !res.route.AcceptsAmount(req.Amount):
			logrus.Debugf("Route %s excluded: amount %s outside [%s, %s]",
				res.protocol, req.Amount, res.route.MinAmount, res.route.MaxAmount)
		default:
			routes = append(routes, res.route)
		}
	}

	if len(routes) == 0 {
		return nil, nil, errs.NoRoute()
	}

	return Rank(routes), a.warnings(req), nil
}

// quoteOne fragt einen einzelnen Adapter mit eigenem Timeout ab
func (a *Aggregator) quoteOne(ctx context.Context, ad adapter.Adapter, req model.BridgeRequest) quoteResult {
	protocol := ad.Protocol()

	breaker := a.breakers[protocol]
	if breaker != nil && !breaker.Allow() {
		return quoteResult{protocol: protocol, skipped: true}
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.AdapterTimeout)
	defer cancel()

	route, err := ad.Quote(ctx, req)
	if breaker != nil {
		breaker.Record(err)
	}
	return quoteResult{protocol: protocol, route: route, err: err}
}

// Rank sortiert Routen deterministisch: primär aufsteigend nach Gebühr,
// bei Gleichstand aufsteigend nach der unteren Zeitgrenze, danach
// absteigend nach Sicherheitsstufe. Die Eingabe bleibt unverändert.
func Rank(routes []model.BridgeRoute) []model.BridgeRoute {
	ranked := make([]model.BridgeRoute, len(routes))
	copy(ranked, routes)

	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].FeeRate.Cmp(ranked[j].FeeRate); c != 0 {
			return c < 0
		}
		if ranked[i].EstimatedTime.Min != ranked[j].EstimatedTime.Min {
			return ranked[i].EstimatedTime.Min < ranked[j].EstimatedTime.Min
		}
		return ranked[i].Security.Rank() > ranked[j].Security.Rank()
	})
	return ranked
}

// warnings erzeugt beratende Hinweise unabhängig vom Ranking
func (a *Aggregator) warnings(req model.BridgeRequest) []string {
	var warnings []string

	if !a.opts.LargeTransferThreshold.IsZero() && req.Amount.GreaterThan(a.opts.LargeTransferThreshold) {
		warnings = append(warnings, "Large amount detected. Consider splitting into smaller transactions.")
	}

	if a.opts.HighFeeChains[req.FromChain] || a.opts.HighFeeChains[req.ToChain] {
		name := a.chains.Name(req.FromChain)
		if !a.opts.HighFeeChains[req.FromChain] {
			name = a.chains.Name(req.ToChain)
		}
		warnings = append(warnings, "Gas fees on "+name+" are currently high. Consider bridging during off-peak hours.")
	}

	return warnings
}
