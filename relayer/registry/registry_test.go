package registry

import (
	"testing"
	"time"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/ibc"
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

func TestAddChannelAndQueryByKeyIsIdempotent(t *testing.T) {
	r := New()
	c := testChannel()

	require.NoError(t, r.AddChannel(c))
	require.NoError(t, r.AddChannel(c))

	key, err := Key(c.Key())
	require.NoError(t, err)

	got, ok := r.QueryByKey(key)
	require.True(t, ok)
	require.Equal(t, c, got)
}

func TestAddChannelWithFlipIsLookupFromEitherSide(t *testing.T) {
	r := New()
	c := testChannel()
	require.NoError(t, r.AddChannelWithFlip(c))

	forwardKey, err := Key(c.Key())
	require.NoError(t, err)
	_, ok := r.QueryByKey(forwardKey)
	require.True(t, ok)

	flippedKey, err := Key(c.Flipped().Key())
	require.NoError(t, err)
	_, ok = r.QueryByKey(flippedKey)
	require.True(t, ok)
}

func TestQueryByPacketMatchesRegisteredChannel(t *testing.T) {
	r := New()
	c := testChannel()
	require.NoError(t, r.AddChannel(c))

	p := channeltypes.Packet{
		Sequence:           1,
		SourcePort:         "transfer",
		SourceChannel:      "channel-0",
		DestinationPort:    "transfer",
		DestinationChannel: "channel-1",
		Data:               []byte("payload"),
	}

	got, ok, err := r.QueryByPacket(p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c, got)
}

func TestQueryByPacketMissReturnsFalse(t *testing.T) {
	r := New()
	p := channeltypes.Packet{
		Sequence:           1,
		SourcePort:         "transfer",
		SourceChannel:      "channel-99",
		DestinationPort:    "transfer",
		DestinationChannel: "channel-98",
		Data:               []byte("payload"),
	}

	_, ok, err := r.QueryByPacket(p)
	require.NoError(t, err)
	require.False(t, ok)
}
