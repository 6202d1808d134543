// Package registry implements the channel registry (spec §4.2, C2): a
// content-addressed store of bidirectional Channel objects keyed by
// the base64 of a canonical encoding of their ChannelKey.
package registry

import (
	"encoding/base64"
	"encoding/json"
	"sync"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// ChannelRegistry is the runtime channel pool (spec §3 "ChannelPool").
// A single RWMutex guards the map: handshake completion and bootstrap
// write under the exclusive lock, dispatch reads under the shared
// lock (spec §5).
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]ibc.Channel
}

// New returns an empty channel registry.
func New() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]ibc.Channel)}
}

// Key returns the base64 of the canonical JSON encoding of k (spec
// §4.2). json.Marshal on a fixed struct shape with no map fields
// already produces a stable field order, so no additional
// canonicalization step is needed (see DESIGN.md's stdlib
// justification for this package).
func Key(k ibc.ChannelKey) (string, error) {
	bz, err := json.Marshal(k)
	if err != nil {
		return "", relayererrors.ErrDecode.Wrapf("encoding channel key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(bz), nil
}

// AddChannel inserts c, keyed by its A-side coordinates. Re-insertion
// on the same key overwrites (spec §4.2: "Inserts are idempotent on
// key; re-insert overwrites").
func (r *ChannelRegistry) AddChannel(c ibc.Channel) error {
	key, err := Key(c.Key())
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[key] = c
	return nil
}

// AddChannelWithFlip inserts c and c.Flipped(), so lookups succeed
// from either direction (spec §4.2: "After a successful channel
// handshake, the supervisor inserts both Channel and its flipped()").
func (r *ChannelRegistry) AddChannelWithFlip(c ibc.Channel) error {
	if err := r.AddChannel(c); err != nil {
		return err
	}
	return r.AddChannel(c.Flipped())
}

// QueryByKey returns the Channel registered under key, if any.
func (r *ChannelRegistry) QueryByKey(key string) (ibc.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.channels[key]
	return c, ok
}

// QueryByPacket returns the Channel whose coordinates match p's
// source/destination ports and channels (spec §4.2, Testable Property
// 2).
func (r *ChannelRegistry) QueryByPacket(p ibc.Packet) (ibc.Channel, bool, error) {
	key, err := Key(ibc.ChannelKeyFromPacket(p))
	if err != nil {
		return ibc.Channel{}, false, err
	}
	c, ok := r.QueryByKey(key)
	return c, ok, nil
}
