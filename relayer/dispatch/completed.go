// Package dispatch implements the aggregate dispatcher (C7, spec
// §4.7): per-packet passthrough and clustered aggregate submission of
// drained SendPacket events, plus the completed_txs log the
// `aggregator querytotalgas` command reads from.
package dispatch

import (
	"sync"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

// GroupingType selects how drained SendPacket events are grouped
// before submission (spec §4.7, CLI `--gtype`).
type GroupingType int

const (
	// NonGrouping sends each packet individually — identical to
	// cosmosibc passthrough mode.
	NonGrouping GroupingType = iota
	// Random clusters with random seeding; the aggregate path runs the
	// same seeding and rebalance pass as ClusterGrouping.
	Random
	// ClusterGrouping clusters with seeding and the full rebalance pass
	// (spec §4.6 steps 3-5).
	ClusterGrouping
	// None skips dispatch entirely for this cycle.
	None
)

// CompletedTx is one submitted batch's record (spec §3
// "completed_txs"): the events it produced and the gas it consumed.
type CompletedTx struct {
	Events  []ibc.IbcEventWithHeight
	GasUsed uint64
}

// CompletedLog is the append-only, reader-writer-locked completed_txs
// vector of spec §5 ("completed_txs: reader-writer lock; append-only
// on the writer side").
type CompletedLog struct {
	mu  sync.RWMutex
	txs []CompletedTx
}

// NewCompletedLog returns an empty completed-tx log.
func NewCompletedLog() *CompletedLog {
	return &CompletedLog{}
}

// Append records one completed submission.
func (l *CompletedLog) Append(tx CompletedTx) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx)
}

// CountAndTotalGas answers `aggregator querytotalgas` (spec §4.8,
// §6): the number of completed transactions and their summed gas.
func (l *CompletedLog) CountAndTotalGas() (count int, totalGas uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.txs {
		totalGas += tx.GasUsed
	}
	return len(l.txs), totalGas
}
