package ibc

import (
	"time"

	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
)

// ConnectionEnd is the on-chain connection record of spec §3. Reused
// directly from ibc-go rather than redeclared.
type ConnectionEnd = connectiontypes.ConnectionEnd

// ChannelEnd is the on-chain channel record of spec §3 (ibc-go names
// this type "Channel"; we alias it ChannelEnd to keep the on-chain
// record and the relayer-level pairing object below textually
// distinct, as spec §3 does).
type ChannelEnd = channeltypes.Channel

// ChainID is how a Channel/Connection side names its chain: enough to
// identify it for routing without pulling in
// the full relayer/chain package (which would create an import
// cycle, since relayer/chain depends on relayer/ibc for its message
// types). The supervisor resolves a ChainID to a concrete handle
// through its chain registry at dispatch time (spec §9 "Cyclic
// structures" design note).
type ChainID = string

// ConnectionSide is one end of a relayer-level Connection pairing
// (grounded on rust:cosmos_chain/src/connection.rs ConnectionSide).
type ConnectionSide struct {
	Chain        ChainID
	ClientID     string
	ConnectionID *string
}

// Connection is the relayer's view of a connection handshake in
// progress or complete between two chains.
type Connection struct {
	SideA       ConnectionSide
	SideB       ConnectionSide
	DelayPeriod time.Duration
}

// Flipped returns the Connection with sides A and B swapped.
func (c Connection) Flipped() Connection {
	return Connection{SideA: c.SideB, SideB: c.SideA, DelayPeriod: c.DelayPeriod}
}

// ChannelSide is one end of a relayer-level Channel pairing (spec
// §3's "Channel (relayer object)"; grounded on
// rust:cosmos_chain/src/channel.rs ChannelSide).
type ChannelSide struct {
	Chain        ChainID
	ClientID     string
	ConnectionID string
	PortID       string
	ChannelID    *string
	Version      *string
}

// Channel is the relayer object of spec §3: `{ ordering, side_a,
// side_b, connection_delay }`.
type Channel struct {
	Ordering        channeltypes.Order
	SideA           ChannelSide
	SideB           ChannelSide
	ConnectionDelay time.Duration
}

// Flipped returns the Channel with sides A and B swapped, used so
// the channel registry can be looked up from either direction (spec
// §4.2).
func (c Channel) Flipped() Channel {
	return Channel{
		Ordering:        c.Ordering,
		SideA:           c.SideB,
		SideB:           c.SideA,
		ConnectionDelay: c.ConnectionDelay,
	}
}

// Key builds the ChannelKey identifying this channel's A-side
// coordinates, the key the channel registry indexes on (spec §4.2).
func (c Channel) Key() ChannelKey {
	return ChannelKey{
		SourceChannelID:      c.SideA.ChannelID,
		SourcePortID:         &c.SideA.PortID,
		DestinationChannelID: c.SideB.ChannelID,
		DestinationPortID:    &c.SideB.PortID,
	}
}
