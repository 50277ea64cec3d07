package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker() *CircuitBreaker {
	return NewWithConfig("test-backend", Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          50 * time.Millisecond,
	})
}

func TestOpensAfterFailureThreshold(t *testing.T) {
	cb := newTestBreaker()

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, Closed, cb.GetState())
	assert.True(t, cb.CanExecute())

	cb.RecordFailure()
	assert.Equal(t, Open, cb.GetState())
	assert.False(t, cb.CanExecute())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker()

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	assert.Equal(t, Closed, cb.GetState())
}

func TestHalfOpenAfterTimeout(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	require.Equal(t, Open, cb.GetState())
	require.False(t, cb.CanExecute())

	time.Sleep(60 * time.Millisecond)

	assert.True(t, cb.CanExecute())
	assert.Equal(t, HalfOpen, cb.GetState())
}

func TestHalfOpenClosesAfterSuccessThreshold(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(60 * time.Millisecond)
	require.True(t, cb.CanExecute())

	cb.RecordSuccess()
	assert.Equal(t, HalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, Closed, cb.GetState())
}

func TestHalfOpenReopensOnFailure(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	time.Sleep(60 * time.Millisecond)
	require.True(t, cb.CanExecute())
	require.Equal(t, HalfOpen, cb.GetState())

	cb.RecordFailure()
	assert.Equal(t, Open, cb.GetState())
	assert.False(t, cb.CanExecute())
}

func TestMetricsSnapshot(t *testing.T) {
	cb := newTestBreaker()

	cb.RecordSuccess()
	cb.RecordSuccess()
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}

	m := cb.GetMetrics()
	assert.Equal(t, int64(5), m.TotalRequests)
	assert.Equal(t, int64(2), m.SuccessfulRequests)
	assert.Equal(t, int64(3), m.FailedRequests)
	assert.Equal(t, int64(1), m.CircuitOpens)
	assert.Equal(t, int64(0), m.CircuitCloses)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Closed", Closed.String())
	assert.Equal(t, "Open", Open.String())
	assert.Equal(t, "HalfOpen", HalfOpen.String())
}
