package session

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Sarish05/AIvestor-sub000/internal/ledger"
)

// Registry maps session ids to their portfolios. Each session owns
// exactly one ledger, created on first touch and seeded with the
// configured initial investment. The map has its own lock; each
// ledger serializes its own mutations.
type Registry struct {
	mu          sync.RWMutex
	ledgers     map[string]*ledger.Ledger
	initialCash decimal.Decimal
}

// NewRegistry creates a registry seeding new sessions with initialCash.
func NewRegistry(initialCash decimal.Decimal) *Registry {
	return &Registry{
		ledgers:     make(map[string]*ledger.Ledger),
		initialCash: initialCash,
	}
}

// Ledger returns the session's portfolio, creating it if the session
// is new.
func (r *Registry) Ledger(sessionID string) *ledger.Ledger {
	r.mu.RLock()
	l, ok := r.ledgers[sessionID]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check: another request may have created it meanwhile
	if l, ok := r.ledgers[sessionID]; ok {
		return l
	}
	l = ledger.New(r.initialCash)
	r.ledgers[sessionID] = l
	return l
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ledgers)
}
