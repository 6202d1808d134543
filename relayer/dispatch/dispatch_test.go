package dispatch

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/ibc"
	"github.com/mosaicxc/relayer/relayer/registry"
)

func testChannel() ibc.Channel {
	srcChan := "channel-0"
	dstChan := "channel-1"
	srcVersion := "ics20-1"
	dstVersion := "ics20-1"
	return ibc.Channel{
		Ordering: channeltypes.UNORDERED,
		SideA: ibc.ChannelSide{
			Chain:        "chain-a",
			ClientID:     "07-tendermint-0",
			ConnectionID: "connection-0",
			PortID:       "transfer",
			ChannelID:    &srcChan,
			Version:      &srcVersion,
		},
		SideB: ibc.ChannelSide{
			Chain:        "chain-b",
			ClientID:     "07-tendermint-1",
			ConnectionID: "connection-1",
			PortID:       "transfer",
			ChannelID:    &dstChan,
			Version:      &dstVersion,
		},
		ConnectionDelay: 10 * time.Second,
	}
}

func sendPacketEvent(seq uint64, height uint64) ibc.IbcEventWithHeight {
	p := channeltypes.Packet{
		Sequence:           seq,
		SourcePort:         "transfer",
		SourceChannel:      "channel-0",
		DestinationPort:    "transfer",
		DestinationChannel: "channel-1",
		Data:               []byte("payload"),
	}
	return ibc.IbcEventWithHeight{
		Event:  ibc.SendPacketEvent{Packet: p},
		Height: ibc.Height{RevisionHeight: height},
	}
}

type stubResolver struct{ chains map[string]*chain.Handle }

func (s stubResolver) Chain(chainID string) (*chain.Handle, bool) {
	h, ok := s.chains[chainID]
	return h, ok
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.AddChannel(testChannel()))
	resolver := stubResolver{chains: map[string]*chain.Handle{
		"chain-a": {ChainID: "chain-a"},
		"chain-b": {ChainID: "chain-b"},
	}}
	return New(reg, resolver, 8, log.NewNopLogger())
}

func TestBucketEventsGroupsByChannelAndHeight(t *testing.T) {
	d := newTestDispatcher(t)

	events := []ibc.IbcEventWithHeight{
		sendPacketEvent(1, 100),
		sendPacketEvent(2, 100),
		sendPacketEvent(3, 101),
	}

	buckets, err := d.bucketEvents(events)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	total := 0
	for _, b := range buckets {
		total += len(b.events)
	}
	require.Equal(t, 3, total)
}

func TestBucketEventsDropsUnregisteredChannel(t *testing.T) {
	reg := registry.New()
	resolver := stubResolver{chains: map[string]*chain.Handle{}}
	d := New(reg, resolver, 8, log.NewNopLogger())

	events := []ibc.IbcEventWithHeight{sendPacketEvent(1, 100)}

	buckets, err := d.bucketEvents(events)
	require.NoError(t, err)
	require.Empty(t, buckets)
}

func TestBucketEventsIgnoresNonSendPacketEvents(t *testing.T) {
	d := newTestDispatcher(t)

	events := []ibc.IbcEventWithHeight{
		{Event: ibc.AcknowledgePacketEvent{}, Height: ibc.Height{RevisionHeight: 100}},
	}

	buckets, err := d.bucketEvents(events)
	require.NoError(t, err)
	require.Empty(t, buckets)
}
