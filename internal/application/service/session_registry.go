package service

import (
	"sync"
	"time"

	"github.com/sanjeevani/pos-api/internal/domain/billing"
)

// billingSession pairs an operator's ledger with its own lock so two
// requests from the same till cannot interleave ledger commands.
type billingSession struct {
	mu       sync.Mutex
	ledger   *billing.Ledger
	lastSeen time.Time
}

// SessionRegistry holds the in-progress bill for each operator. Sessions
// live in memory only; a submitted or abandoned bill costs nothing to lose.
type SessionRegistry struct {
	sessions    map[int64]*billingSession
	mu          sync.RWMutex
	cleanupTick time.Duration
	sessionTTL  time.Duration
	stopCh      chan struct{}
}

// SessionRegistryConfig holds configuration for the session registry
type SessionRegistryConfig struct {
	CleanupInterval time.Duration // How often to sweep idle sessions
	SessionTTL      time.Duration // How long an untouched session survives
}

// DefaultSessionRegistryConfig returns sensible defaults
func DefaultSessionRegistryConfig() SessionRegistryConfig {
	return SessionRegistryConfig{
		CleanupInterval: 10 * time.Minute,
		SessionTTL:      4 * time.Hour, // A shift's worth of idle time
	}
}

// NewSessionRegistry creates a new session registry
func NewSessionRegistry(cfg SessionRegistryConfig) *SessionRegistry {
	r := &SessionRegistry{
		sessions:    make(map[int64]*billingSession),
		cleanupTick: cfg.CleanupInterval,
		sessionTTL:  cfg.SessionTTL,
		stopCh:      make(chan struct{}),
	}

	go r.cleanupLoop()

	return r
}

// session returns the operator's session, creating it on first use
func (r *SessionRegistry) session(userID int64) *billingSession {
	r.mu.RLock()
	s, ok := r.sessions[userID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sessions[userID]; ok {
		return s
	}
	s = &billingSession{ledger: billing.NewLedger()}
	r.sessions[userID] = s
	return s
}

// WithLedger runs fn while holding the operator's session lock. Whatever
// fn returns is passed through unchanged.
func (r *SessionRegistry) WithLedger(userID int64, fn func(l *billing.Ledger) error) error {
	s := r.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return fn(s.ledger)
}

// Stop terminates the background cleanup goroutine
func (r *SessionRegistry) Stop() {
	close(r.stopCh)
}

func (r *SessionRegistry) cleanupLoop() {
	ticker := time.NewTicker(r.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCh:
			return
		}
	}
}

func (r *SessionRegistry) cleanup() {
	cutoff := time.Now().Add(-r.sessionTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, userID)
		}
	}
}
