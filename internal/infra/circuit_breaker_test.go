package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFallo = errors.New("fallo")

func breakerConReloj(t *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: 10 * time.Second})
	cb.now = func() time.Time { return *t }
	return cb
}

func TestCircuitBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	ahora := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cb := breakerConReloj(&ahora)

	require.ErrorIs(t, cb.Execute(func() error { return errFallo }), errFallo)
	assert.Equal(t, CBClosed, cb.State())
	require.ErrorIs(t, cb.Execute(func() error { return errFallo }), errFallo)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)
}

func TestCircuitBreaker_ExitoReiniciaConteo(t *testing.T) {
	ahora := time.Now()
	cb := breakerConReloj(&ahora)

	_ = cb.Execute(func() error { return errFallo })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errFallo })
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenCierraOReabre(t *testing.T) {
	ahora := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cb := breakerConReloj(&ahora)
	_ = cb.Execute(func() error { return errFallo })
	_ = cb.Execute(func() error { return errFallo })
	require.Equal(t, CBOpen, cb.State())

	ahora = ahora.Add(10 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	// A failing probe re-opens.
	_ = cb.Execute(func() error { return errFallo })
	assert.Equal(t, CBOpen, cb.State())

	ahora = ahora.Add(11 * time.Second)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_UnaSondaALaVez(t *testing.T) {
	ahora := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cb := breakerConReloj(&ahora)
	_ = cb.Execute(func() error { return errFallo })
	_ = cb.Execute(func() error { return errFallo })
	ahora = ahora.Add(time.Minute)

	err := cb.Execute(func() error {
		// While the probe runs, a second caller is refused.
		assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
