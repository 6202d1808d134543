// Package supervisor implements the supervisor (C8, spec §4.8): it
// owns the registered chains, the channel pool, a chain-manager per
// registered chain, and the completed-tx log, and dispatches the CLI
// commands of spec §6 onto them.
package supervisor

import (
	"sync"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
)

// RegisteredChains is the supervisor's live chain-handle table (spec
// §3 "RegisteredChains", §5: "populated only at command time;
// dispatched read-only thereafter"). Grounded on
// rust:cosmos_chain/src/registered_chains.rs.
type RegisteredChains struct {
	mu     sync.RWMutex
	chains map[string]*chain.Handle
}

// NewRegisteredChains returns an empty chain table.
func NewRegisteredChains() *RegisteredChains {
	return &RegisteredChains{chains: make(map[string]*chain.Handle)}
}

// Add registers h under its chain id, overwriting any prior handle for
// the same id.
func (r *RegisteredChains) Add(h *chain.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[h.ChainID] = h
}

// Chain returns the handle registered for chainID, satisfying
// dispatch.ChainResolver.
func (r *RegisteredChains) Chain(chainID string) (*chain.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.chains[chainID]
	return h, ok
}

// MustChain is Chain with the identifier-error lookup failure baked
// in, the shape every command handler in supervisor.go needs (rust's
// search_chain_by_id plus the caller's ok_or_else(Error::empty_chain_id)).
func (r *RegisteredChains) MustChain(chainID string) (*chain.Handle, error) {
	h, ok := r.Chain(chainID)
	if !ok {
		return nil, relayererrors.ErrIdentifier.Wrapf("chain %q is not registered", chainID)
	}
	return h, nil
}

// AllChainIDs returns every registered chain id (rust's
// query_all_chain_ids), for `chain queryall`.
func (r *RegisteredChains) AllChainIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	return ids
}
