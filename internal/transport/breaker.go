package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/tair/furniture-storefront/pkg/logger"
)

// ErrCircuitOpen is returned without calling the backend while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"    // Normal operation
	StateOpen     CircuitState = "open"      // Blocking calls
	StateHalfOpen CircuitState = "half-open" // Probing recovery
)

// Breaker guards calls to one backend endpoint
type Breaker struct {
	name             string
	maxFailures      int           // consecutive failures before opening
	openTimeout      time.Duration // wait before probing again
	successesToClose int

	mu              sync.Mutex
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
	now             func() time.Time
}

// NewBreaker creates a closed breaker
func NewBreaker(name string, maxFailures int, openTimeout time.Duration) *Breaker {
	return &Breaker{
		name:             name,
		maxFailures:      maxFailures,
		openTimeout:      openTimeout,
		successesToClose: 3,
		state:            StateClosed,
		lastStateChange:  time.Now(),
		now:              time.Now,
	}
}

// Call runs fn unless the breaker is open. Only errors for which countsAsFailure is true
// are recorded as failures.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen && b.now().Sub(b.lastStateChange) > b.openTimeout {
		b.transition(StateHalfOpen)
		b.successCount = 0
	}
	state := b.state
	b.mu.Unlock()

	if state == StateOpen {
		return ErrCircuitOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if countsAsFailure(err) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

// State returns the current state
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) onFailure() {
	b.failures++

	if b.state == StateHalfOpen {
		b.transition(StateOpen)
		return
	}
	if b.failures >= b.maxFailures && b.state == StateClosed {
		b.transition(StateOpen)
		logger.Logger.Error().
			Str("circuit", b.name).
			Int("failures", b.failures).
			Int("threshold", b.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.successesToClose {
			b.failures = 0
			b.successCount = 0
			b.transition(StateClosed)
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) transition(to CircuitState) {
	from := b.state
	b.state = to
	b.lastStateChange = b.now()
	logger.Logger.Info().
		Str("circuit", b.name).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Circuit breaker state changed")
}

// BreakerSet hands out one breaker per endpoint
type BreakerSet struct {
	maxFailures int
	openTimeout time.Duration

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewBreakerSet creates an empty set
func NewBreakerSet(maxFailures int, openTimeout time.Duration) *BreakerSet {
	return &BreakerSet{
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		breakers:    make(map[string]*Breaker),
	}
}

// For gets or creates the breaker for endpoint
func (s *BreakerSet) For(endpoint string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.breakers[endpoint]; ok {
		return b
	}
	b := NewBreaker(endpoint, s.maxFailures, s.openTimeout)
	s.breakers[endpoint] = b
	return b
}

// States reports the state of every known breaker
func (s *BreakerSet) States() map[string]CircuitState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]CircuitState, len(s.breakers))
	for name, b := range s.breakers {
		out[name] = b.State()
	}
	return out
}
