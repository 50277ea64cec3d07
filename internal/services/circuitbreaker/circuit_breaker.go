// Package circuitbreaker guards language-model and embedding backends with a
// Closed/Open/HalfOpen breaker. State is held in-process: this service is a
// single-node design with no distributed coordination.
package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "HalfOpen"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

type Config struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

type Metrics struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	CircuitOpens       int64
	CircuitCloses      int64
}

type CircuitBreaker struct {
	serviceName string
	config      Config

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	lastFailure  time.Time
	lastChange   time.Time
	metrics      Metrics
}

// NewForProvider creates a breaker with default thresholds for one backend.
func NewForProvider(providerName string) *CircuitBreaker {
	config := Config{
		FailureThreshold: 5,
		SuccessThreshold: 3,
		Timeout:          30 * time.Second,
	}
	return NewWithConfig(providerName, config)
}

func NewWithConfig(serviceName string, config Config) *CircuitBreaker {
	return &CircuitBreaker{
		serviceName: serviceName,
		config:      config,
		state:       Closed,
		lastChange:  time.Now(),
	}
}

// CanExecute reports whether a call may proceed. An Open breaker transitions
// to HalfOpen once the timeout since the last failure has elapsed.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case Closed, HalfOpen:
		return true
	case Open:
		if time.Since(cb.lastFailure) > cb.config.Timeout {
			cb.transitionLocked(HalfOpen)
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess resets the failure count and, in HalfOpen, closes the
// circuit once enough consecutive successes accumulate.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.metrics.TotalRequests++
	cb.metrics.SuccessfulRequests++
	cb.failureCount = 0

	if cb.state == HalfOpen {
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.transitionLocked(Closed)
			cb.metrics.CircuitCloses++
			fiberlog.Infof("CircuitBreaker: %s transitioned to Closed state after success", cb.serviceName)
			return
		}
		fiberlog.Infof("CircuitBreaker: %s recorded success in HalfOpen state", cb.serviceName)
		return
	}
	fiberlog.Debugf("CircuitBreaker: %s recorded success", cb.serviceName)
}

// RecordFailure increments the failure count and opens the circuit when the
// threshold is reached, or immediately on any HalfOpen failure.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.metrics.TotalRequests++
	cb.metrics.FailedRequests++
	cb.failureCount++
	cb.lastFailure = time.Now()

	shouldOpen := (cb.state == Closed && cb.failureCount >= cb.config.FailureThreshold) || cb.state == HalfOpen
	if shouldOpen {
		cb.transitionLocked(Open)
		cb.metrics.CircuitOpens++
		fiberlog.Warnf("CircuitBreaker: %s transitioned to Open state after %d failures", cb.serviceName, cb.failureCount)
		return
	}
	fiberlog.Debugf("CircuitBreaker: %s recorded failure (%d/%d)", cb.serviceName, cb.failureCount, cb.config.FailureThreshold)
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetMetrics returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) GetMetrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.metrics
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	cb.state = to
	cb.lastChange = time.Now()
	cb.successCount = 0
	if to != Open {
		cb.failureCount = 0
	}
}
