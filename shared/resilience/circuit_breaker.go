package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
)

// State represents the circuit breaker state
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker implements the circuit breaker pattern. It never retries;
// an open circuit fails the call immediately.
type CircuitBreaker struct {
	name             string
	maxFailures      uint32
	resetTimeout     time.Duration
	halfOpenMaxCalls uint32
	isFailure        func(error) bool

	state           int32  // atomic
	failures        uint32 // atomic
	lastFailureTime int64  // atomic, unix nanos
	halfOpenCalls   uint32 // atomic

	mu              sync.RWMutex
	successCount    uint64
	failureCount    uint64
	lastStateChange time.Time
	onStateChange   func(name string, from, to State)
}

// CircuitBreakerConfig holds configuration for a circuit breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxFailures      uint32
	ResetTimeout     time.Duration
	HalfOpenMaxCalls uint32
	// IsFailure decides which errors count against the circuit. Nil counts all.
	IsFailure     func(error) bool
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns default circuit breaker configuration
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:             "default",
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if config.HalfOpenMaxCalls == 0 {
		config.HalfOpenMaxCalls = 1
	}

	return &CircuitBreaker{
		name:             config.Name,
		maxFailures:      config.MaxFailures,
		resetTimeout:     config.ResetTimeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		isFailure:        config.IsFailure,
		state:            int32(StateClosed),
		lastStateChange:  time.Now(),
		onStateChange:    config.OnStateChange,
	}
}

// Execute runs fn if the circuit allows it. The error returned by fn is
// passed through untouched.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !cb.canExecute() {
		return apperrors.Unavailable(cb.name, "circuit breaker is OPEN").
			WithDetails("breaker", cb.name)
	}

	err := fn(ctx)

	if err != nil && (cb.isFailure == nil || cb.isFailure(err)) {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}

	return err
}

func (cb *CircuitBreaker) canExecute() bool {
	switch cb.GetState() {
	case StateClosed:
		return true

	case StateOpen:
		lastFailure := time.Unix(0, atomic.LoadInt64(&cb.lastFailureTime))
		if time.Since(lastFailure) <= cb.resetTimeout {
			return false
		}
		// halfOpenCalls was zeroed on entering Open, so the trial slots are
		// shared by the CAS winner and anyone who already sees HalfOpen.
		if !atomic.CompareAndSwapInt32(&cb.state, int32(StateOpen), int32(StateHalfOpen)) {
			return cb.canExecute()
		}
		cb.stateChanged(StateOpen, StateHalfOpen)
		return atomic.AddUint32(&cb.halfOpenCalls, 1) <= cb.halfOpenMaxCalls

	case StateHalfOpen:
		return atomic.AddUint32(&cb.halfOpenCalls, 1) <= cb.halfOpenMaxCalls

	default:
		return false
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	cb.successCount++
	cb.mu.Unlock()

	switch cb.GetState() {
	case StateHalfOpen:
		if atomic.LoadUint32(&cb.halfOpenCalls) >= cb.halfOpenMaxCalls {
			cb.transitionTo(StateClosed)
		}
	case StateClosed:
		atomic.StoreUint32(&cb.failures, 0)
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	cb.failureCount++
	cb.mu.Unlock()

	atomic.StoreInt64(&cb.lastFailureTime, time.Now().UnixNano())
	failures := atomic.AddUint32(&cb.failures, 1)

	switch cb.GetState() {
	case StateClosed:
		if failures >= cb.maxFailures {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		cb.transitionTo(StateOpen)
	}
}

func (cb *CircuitBreaker) transitionTo(newState State) {
	oldState := State(atomic.SwapInt32(&cb.state, int32(newState)))
	if oldState == newState {
		return
	}

	atomic.StoreUint32(&cb.halfOpenCalls, 0)
	if newState == StateClosed {
		atomic.StoreUint32(&cb.failures, 0)
	}
	cb.stateChanged(oldState, newState)
}

func (cb *CircuitBreaker) stateChanged(from, to State) {
	cb.mu.Lock()
	cb.lastStateChange = time.Now()
	cb.mu.Unlock()

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	return State(atomic.LoadInt32(&cb.state))
}

// GetStats returns statistics about the circuit breaker
func (cb *CircuitBreaker) GetStats() CircuitBreakerStats {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return CircuitBreakerStats{
		Name:            cb.name,
		State:           cb.GetState(),
		Failures:        atomic.LoadUint32(&cb.failures),
		SuccessCount:    cb.successCount,
		FailureCount:    cb.failureCount,
		LastStateChange: cb.lastStateChange,
		LastFailureTime: time.Unix(0, atomic.LoadInt64(&cb.lastFailureTime)),
	}
}

// CircuitBreakerStats holds statistics for a circuit breaker
type CircuitBreakerStats struct {
	Name            string
	State           State
	Failures        uint32
	SuccessCount    uint64
	FailureCount    uint64
	LastStateChange time.Time
	LastFailureTime time.Time
}

// CircuitBreakerGroup hands out one breaker per name, built from a shared template.
type CircuitBreakerGroup struct {
	template CircuitBreakerConfig
	breakers map[string]*CircuitBreaker
	mu       sync.RWMutex
}

// NewCircuitBreakerGroup creates a group whose breakers copy template.
func NewCircuitBreakerGroup(template *CircuitBreakerConfig) *CircuitBreakerGroup {
	if template == nil {
		template = DefaultCircuitBreakerConfig()
	}
	return &CircuitBreakerGroup{
		template: *template,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns a circuit breaker by name, creating it if it doesn't exist
func (g *CircuitBreakerGroup) Get(name string) *CircuitBreaker {
	g.mu.RLock()
	cb, exists := g.breakers[name]
	g.mu.RUnlock()
	if exists {
		return cb
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, exists := g.breakers[name]; exists {
		return cb
	}

	config := g.template
	config.Name = name
	cb = NewCircuitBreaker(&config)
	g.breakers[name] = cb

	return cb
}

// GetAllStats returns statistics for all circuit breakers
func (g *CircuitBreakerGroup) GetAllStats() []CircuitBreakerStats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := make([]CircuitBreakerStats, 0, len(g.breakers))
	for _, cb := range g.breakers {
		stats = append(stats, cb.GetStats())
	}
	return stats
}
