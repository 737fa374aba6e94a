package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Sits in front of the print bridge so a switched-off printer PC costs one
// fast failure per receipt instead of a full timeout.
//
//   - Closed:    calls go through; FailureThreshold consecutive failures open it
//   - Open:      calls fail with ErrCircuitOpen until OpenTimeout elapses
//   - Half-Open: a single probe at a time; SuccessThreshold successes close it,
//                any failure opens it again

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig suits the print bridge: three misses open it for 30s.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "puente-impresion",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      30 * time.Second,
	}
}

type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	state    CBState
	fallos   int
	exitos   int
	abierto  time.Time
	probando bool
	now      func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed, now: time.Now}
}

// State reports the current state, moving open to half-open once the
// timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refrescar()
	return cb.state
}

// Execute runs fn unless the breaker is open or a half-open probe is
// already in flight.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	cb.refrescar()
	switch {
	case cb.state == CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.state == CBHalfOpen && cb.probando:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case cb.state == CBHalfOpen:
		cb.probando = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probando = false
	if err != nil {
		cb.registrarFallo()
		return err
	}
	cb.registrarExito()
	return nil
}

// must hold mu
func (cb *CircuitBreaker) refrescar() {
	if cb.state == CBOpen && cb.now().Sub(cb.abierto) >= cb.cfg.OpenTimeout {
		cb.cambiar(CBHalfOpen)
		cb.exitos = 0
	}
}

// must hold mu
func (cb *CircuitBreaker) registrarFallo() {
	cb.fallos++
	switch cb.state {
	case CBClosed:
		if cb.fallos >= cb.cfg.FailureThreshold {
			cb.abrir()
		}
	case CBHalfOpen:
		cb.abrir()
	}
}

// must hold mu
func (cb *CircuitBreaker) registrarExito() {
	switch cb.state {
	case CBClosed:
		cb.fallos = 0
	case CBHalfOpen:
		cb.exitos++
		if cb.exitos >= cb.cfg.SuccessThreshold {
			cb.cambiar(CBClosed)
			cb.fallos, cb.exitos = 0, 0
		}
	}
}

func (cb *CircuitBreaker) abrir() {
	cb.cambiar(CBOpen)
	cb.abierto = cb.now()
	cb.exitos = 0
}

func (cb *CircuitBreaker) cambiar(s CBState) {
	if cb.state == s {
		return
	}
	log.Info().Str("breaker", cb.cfg.Name).Str("de", cb.state.String()).Str("a", s.String()).Msg("circuit breaker: cambio de estado")
	cb.state = s
}
