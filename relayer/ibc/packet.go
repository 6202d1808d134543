package ibc

import (
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
)

// Packet is the IBC cross-chain datagram of spec §3. ibc-go's
// channeltypes.Packet already has the exact field set (sequence,
// source/destination port+channel, data, timeout height/timestamp),
// so it is reused directly rather than re-declared.
type Packet = channeltypes.Packet

// ValidatePacket checks the invariants of spec §3: sequence >= 1 and
// non-empty data.
func ValidatePacket(p Packet) error {
	if p.Sequence < 1 {
		return relayererrors.ErrInternal.Wrap("packet sequence must be >= 1")
	}
	if len(p.Data) == 0 {
		return relayererrors.ErrInternal.Wrap("packet data must not be empty")
	}
	return nil
}

// ChannelKey identifies a directed channel endpoint pair (spec §3
// "ChannelKey", used by both the channel registry and packet
// routing). Fields are pointers because a registry lookup key may be
// partially specified (spec §4.2 notes insertion uses the full
// 4-tuple but the type itself allows optional fields).
type ChannelKey struct {
	SourceChannelID      *string `json:"src_chan,omitempty"`
	SourcePortID         *string `json:"src_port,omitempty"`
	DestinationChannelID *string `json:"dst_chan,omitempty"`
	DestinationPortID    *string `json:"dst_port,omitempty"`
}

// ChannelKeyFromPacket builds the fully-specified ChannelKey for
// routing p to its registered Channel (spec §4.2's
// query_by_packet).
func ChannelKeyFromPacket(p Packet) ChannelKey {
	return ChannelKey{
		SourceChannelID:      &p.SourceChannel,
		SourcePortID:         &p.SourcePort,
		DestinationChannelID: &p.DestinationChannel,
		DestinationPortID:    &p.DestinationPort,
	}
}
