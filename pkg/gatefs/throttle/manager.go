package throttle

import (
	"context"
	"sync"
)

// Manager owns the live Config and the Limiter it governs. All shared
// mutable throttle state lives here; callers funnel every operation
// through Do and every tunable change through Configure.
type Manager struct {
	mu      sync.RWMutex
	cfg     Config
	limiter *Limiter
	bus     *Bus
}

// NewManager creates a manager with the given initial config.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		cfg:     cfg,
		limiter: NewLimiter(cfg.MaxConcurrency),
		bus:     NewBus(),
	}, nil
}

// Bus returns the retry notification bus for subscribing observers.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Snapshot returns a copy of the live config.
func (m *Manager) Snapshot() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Active returns the number of operations currently executing.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limiter.Active()
}

// Pending returns the number of operations queued for admission.
func (m *Manager) Pending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limiter.Pending()
}

// Configure merges the set fields of p into the live config. Changing
// MaxConcurrency requires the limiter to be idle; on success a fresh
// limiter replaces the old one under the write lock, so no operation is
// ever admitted under a stale capacity.
func (m *Manager) Configure(p Partial) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := p.merge(m.cfg)
	if err := next.Validate(); err != nil {
		return err
	}

	if next.MaxConcurrency != m.cfg.MaxConcurrency {
		if !m.limiter.Idle() {
			return &ReconfigError{
				Active:  m.limiter.Active(),
				Pending: m.limiter.Pending(),
			}
		}
		m.limiter = NewLimiter(next.MaxConcurrency)
	}

	m.cfg = next
	return nil
}

// Do admits fn through the limiter and runs it under the retry policy.
// The limiter generation and config are bound while the read lock is
// held, and the operation registers as pending before the lock is
// released; Configure's exclusive lock therefore cannot observe an idle
// limiter while an admission is half-way through.
func (m *Manager) Do(ctx context.Context, operation string, fn func() error) error {
	m.mu.RLock()
	cfg := m.cfg
	limiter := m.limiter
	limiter.Enqueue()
	m.mu.RUnlock()

	if err := limiter.Acquire(ctx); err != nil {
		return err
	}
	defer limiter.Release()

	return retry(ctx, cfg, operation, m.bus, fn)
}
