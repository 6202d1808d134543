// Package event implements the event subscription (C3) and event pool
// (C4) components of spec §4.3/§4.4.
package event

import (
	"sync"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

// Pool is the shared in-memory buffer of observed events (spec §4.4
// "EventPool"). Grounded on rust:cosmos_chain/src/event_pool.rs, whose
// push_events/clear_pool/read_latest_event map directly onto
// PushEvents/Drain/ReadLatest below.
type Pool struct {
	mu     sync.RWMutex
	events []ibc.IbcEventWithHeight
}

// NewPool returns an empty event pool.
func NewPool() *Pool {
	return &Pool{}
}

// PushEvents appends events to the pool (rust's push_events).
func (p *Pool) PushEvents(events []ibc.IbcEventWithHeight) {
	if len(events) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

// Drain returns and removes all buffered events (rust's clear_pool,
// spec §4.4: "clustering drains the full buffer each cycle").
func (p *Pool) Drain() []ibc.IbcEventWithHeight {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	out := p.events
	p.events = nil
	return out
}

// ReadLatest pops and returns the most recently pushed event (rust's
// read_latest_event).
func (p *Pool) ReadLatest() (ibc.IbcEventWithHeight, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.events)
	if n == 0 {
		return ibc.IbcEventWithHeight{}, false
	}
	ev := p.events[n-1]
	p.events = p.events[:n-1]
	return ev, true
}

// Len reports the number of buffered events.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.events)
}
