// Package circuitbreaker provides a defensive mechanism that keeps a
// persistently failing bridge protocol API from slowing down every
// route aggregation.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, adapter is skipped
	StateHalfOpen              // Probing if the adapter has recovered
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Options configures a circuit breaker.
type Options struct {
	// Name identifies the guarded adapter in logs and callbacks
	Name string

	// FailureThreshold is the number of consecutive failures that trips the circuit
	FailureThreshold int

	// CooldownPeriod is how long the circuit stays open before a half-open probe
	CooldownPeriod time.Duration

	// SuccessThreshold is the number of successful probes required to close the circuit
	SuccessThreshold int

	// OnTrip is called when the circuit trips, for monitoring/alerting
	OnTrip func(name string, failures int)

	// OnStateChange is called on every state transition, including recovery
	OnStateChange func(name string, state State)
}

// Breaker implements the circuit breaker pattern around one adapter.
// A tripped breaker makes the aggregator skip the adapter until the
// cooldown elapses and a probe succeeds.
type Breaker struct {
	opts Options

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	lastTrip  time.Time
}

// New creates a new Breaker with the provided options. Zero thresholds are
// replaced with conservative defaults.
func New(opts Options) *Breaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.CooldownPeriod <= 0 {
		opts.CooldownPeriod = 2 * time.Minute
	}
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = 3
	}
	return &Breaker{opts: opts, state: StateClosed}
}

// Allow reports whether a call to the guarded adapter may proceed.
// An open circuit transitions to half-open once the cooldown has elapsed,
// letting a single probe through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.lastTrip) < b.opts.CooldownPeriod {
			return false
		}
		b.setState(StateHalfOpen)
		b.successes = 0
		logrus.Infof("Circuit breaker half-open for %s: probing recovery", b.opts.Name)
	}
	return true
}

// Record feeds the outcome of an adapter call into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.opts.FailureThreshold) {
			b.trip()
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.opts.SuccessThreshold {
			b.setState(StateClosed)
			b.successes = 0
			logrus.Infof("Circuit breaker closed for %s: adapter has recovered", b.opts.Name)
		}
	}
}

// trip opens the circuit. Caller must hold the lock.
func (b *Breaker) trip() {
	b.setState(StateOpen)
	b.lastTrip = time.Now()
	logrus.Warnf("Circuit breaker tripped for %s after %d consecutive failures", b.opts.Name, b.failures)
	if b.opts.OnTrip != nil {
		b.opts.OnTrip(b.opts.Name, b.failures)
	}
}

// GetState returns the current state of the circuit breaker
func (b *Breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// setState transitions the breaker and notifies the state-change hook.
// Caller must hold the lock.
func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	b.state = state
	if b.opts.OnStateChange != nil {
		b.opts.OnStateChange(b.opts.Name, state)
	}
}

// Reset forcibly resets the circuit breaker to closed state
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setState(StateClosed)
	b.failures = 0
	b.successes = 0
	logrus.Infof("Circuit breaker for %s manually reset to closed state", b.opts.Name)
}
