package state

import "sync"

// Store guards the ExchangeState with one coarse-grained lock. The
// dispatcher holds exclusive access for the duration of applying one
// message; the quoting loop holds read access for the duration of one
// reconciliation pass, so ladder generation and convergence observe a
// single consistent state rather than a torn read.
type Store struct {
	mu    sync.RWMutex
	state ExchangeState
}

// NewStore creates a store for one venue and target contract.
func NewStore(venue, symbol, indexSymbol string) *Store {
	return &Store{state: newExchangeState(venue, symbol, indexSymbol)}
}

// Apply runs fn with exclusive access. If fn returns an error the
// message is considered failed; fn must mutate only after all parsing
// has succeeded so a failure leaves prior state untouched.
func (st *Store) Apply(fn func(*ExchangeState) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(&st.state)
}

// Read runs fn with shared access against a consistent state.
func (st *Store) Read(fn func(*ExchangeState)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	fn(&st.state)
}
