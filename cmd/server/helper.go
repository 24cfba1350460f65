package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-route-ea/internal/errs"
	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/validation"
)

// Helper functions for request admission, parsing and response marshalling

// errBadBody is returned for unparseable request bodies.
var errBadBody = errs.Validation("body", "request body must be valid JSON")

// admit enforces the HTTP method and the rate limit for a tool endpoint.
func (s *Server) admit(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if s.rateLimit != nil && !s.rateLimit.Allow() {
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return false
	}
	return true
}

// parseBridgeQuery builds a normalized request from route-discovery query
// parameters. The recipient and slippage are optional here.
func (s *Server) parseBridgeQuery(r *http.Request) (model.BridgeRequest, error) {
	q := r.URL.Query()

	req, err := s.normalizeRequest(q.Get("fromChain"), q.Get("toChain"), q.Get("token"), q.Get("amount"))
	if err != nil {
		return model.BridgeRequest{}, err
	}
	req.Recipient = q.Get("recipient")
	return req, nil
}

// normalizeRequest resolves chain names and parses the amount string into the
// internal request shape shared by all endpoints.
func (s *Server) normalizeRequest(fromChain, toChain, token, amount string) (model.BridgeRequest, error) {
	from, err := s.chains.Resolve(fromChain)
	if err != nil {
		return model.BridgeRequest{}, err
	}
	to, err := s.chains.Resolve(toChain)
	if err != nil {
		return model.BridgeRequest{}, err
	}
	parsed, err := validation.ParseAmount(amount)
	if err != nil {
		return model.BridgeRequest{}, err
	}

	return model.BridgeRequest{
		FromChain: from,
		ToChain:   to,
		Token:     token,
		Amount:    parsed,
	}, nil
}

// errorResponse maps a taxonomy error onto its HTTP status and serializes the
// caller-facing kind and message. Wrapped causes stay in the logs.
func (s *Server) errorResponse(w http.ResponseWriter, endpoint string, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindUnknownChain, errs.KindUnsupportedProtocol:
		status = http.StatusBadRequest
	case errs.KindNoRoute:
		status = http.StatusNotFound
	case errs.KindAdapter:
		status = http.StatusBadGateway
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   status,
	}).Warn(err)

	if s.metrics != nil {
		s.metrics.requestCounter.WithLabelValues(endpoint, "error").Inc()
	}

	body := map[string]interface{}{"kind": errs.KindOf(err), "message": "internal error"}
	var e *errs.Error
	if errors.As(err, &e) {
		body["message"] = e.Message
		if e.Field != "" {
			body["field"] = e.Field
		}
	}
	writeJSON(w, status, map[string]interface{}{"error": body})
}

// observe records a successful request in the Prometheus metrics.
func (s *Server) observe(endpoint string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.requestCounter.WithLabelValues(endpoint, "success").Inc()
	s.metrics.requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// writeJSON serializes a response payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Warnf("Failed to encode response: %v", err)
	}
}
