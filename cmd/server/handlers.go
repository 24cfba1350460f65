package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/validation"
)

// handleFindRoutes discovers and ranks bridge routes for a transfer.
// The first route in the ranked list is returned as the recommendation.
func (s *Server) handleFindRoutes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r, http.MethodGet) {
		return
	}

	req, err := s.parseBridgeQuery(r)
	if err != nil {
		s.errorResponse(w, "find-bridge-routes", err)
		return
	}

	routes, warnings, err := s.aggregator.FindRoutes(r.Context(), req)
	if err != nil {
		s.errorResponse(w, "find-bridge-routes", err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}

	s.observe("find-bridge-routes", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"routes":         routes,
		"recommendation": routes[0],
		"warnings":       warnings,
	})
}

// createTransactionRequest is the wire shape of the transaction endpoint.
type createTransactionRequest struct {
	Protocol    string `json:"protocol"`
	FromChain   string `json:"fromChain"`
	ToChain     string `json:"toChain"`
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
	SlippageBps int    `json:"slippageBps"`
}

// handleCreateTransaction builds an unsigned transaction for a chosen protocol.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r, http.MethodPost) {
		return
	}

	var body createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, "create-bridge-transaction", errBadBody)
		return
	}

	req, err := s.normalizeRequest(body.FromChain, body.ToChain, body.Token, body.Amount)
	if err != nil {
		s.errorResponse(w, "create-bridge-transaction", err)
		return
	}
	req.Recipient = body.Recipient
	req.SlippageBps = body.SlippageBps

	tx, info, err := s.builder.Build(r.Context(), req, model.Protocol(body.Protocol))
	if err != nil {
		s.errorResponse(w, "create-bridge-transaction", err)
		return
	}

	s.observe("create-bridge-transaction", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction":  tx,
		"estimatedGas": tx.GasLimit,
		"bridgeInfo":   info,
	})
}

// handleTrackStatus reports the cross-chain settlement state of a transfer.
func (s *Server) handleTrackStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r, http.MethodGet) {
		return
	}

	txHash := r.URL.Query().Get("txHash")
	protocol := model.Protocol(r.URL.Query().Get("protocol"))

	status, err := s.tracker.Track(r.Context(), txHash, protocol)
	if err != nil {
		s.errorResponse(w, "track-bridge-status", err)
		return
	}

	s.observe("track-bridge-status", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
	})
}

// handleEstimateGas prices a prospective transfer on both chains.
func (s *Server) handleEstimateGas(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.admit(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	from, err := s.chains.Resolve(q.Get("fromChain"))
	if err != nil {
		s.errorResponse(w, "estimate-bridge-gas", err)
		return
	}
	to, err := s.chains.Resolve(q.Get("toChain"))
	if err != nil {
		s.errorResponse(w, "estimate-bridge-gas", err)
		return
	}
	amount, err := validation.ParseAmount(q.Get("amount"))
	if err != nil {
		s.errorResponse(w, "estimate-bridge-gas", err)
		return
	}

	estimate, recommendations, err := s.estimator.Estimate(r.Context(), from, to, amount)
	if err != nil {
		s.errorResponse(w, "estimate-bridge-gas", err)
		return
	}

	s.observe("estimate-bridge-gas", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gasEstimate":     estimate,
		"recommendations": recommendations,
	})
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	breakerStates := make(map[string]string, len(s.breakers))
	for protocol, breaker := range s.breakers {
		breakerStates[string(protocol)] = breaker.GetState().String()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "operational",
		"uptime":   time.Since(startTime).String(),
		"version":  "1.0.0",
		"adapters": len(s.breakers),
		"breakers": breakerStates,
		"configuration": map[string]interface{}{
			"adapter_timeout":          s.cfg.AdapterTimeout.String(),
			"large_transfer_threshold": s.cfg.LargeTransferThreshold,
			"high_fee_chains":          s.cfg.HighFeeChains,
		},
	})
}
