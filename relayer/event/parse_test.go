package event

import (
	"encoding/hex"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

func attr(key, value string) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value}
}

func TestParseABCIEventSendPacket(t *testing.T) {
	data := []byte(`{"amount":"1"}`)
	ev := abci.Event{
		Type: channeltypes.EventTypeSendPacket,
		Attributes: []abci.EventAttribute{
			attr(channeltypes.AttributeKeySequence, "7"),
			attr(channeltypes.AttributeKeySrcPort, "transfer"),
			attr(channeltypes.AttributeKeySrcChannel, "channel-0"),
			attr(channeltypes.AttributeKeyDstPort, "transfer"),
			attr(channeltypes.AttributeKeyDstChannel, "channel-1"),
			attr(channeltypes.AttributeKeyDataHex, hex.EncodeToString(data)),
			attr(channeltypes.AttributeKeyTimeoutHeight, "1-100"),
			attr(channeltypes.AttributeKeyTimeoutTimestamp, "0"),
		},
	}

	height, err := ibc.NewHeight(1, 10)
	require.NoError(t, err)

	parsed, ok, err := parseABCIEvent(height, ev)
	require.NoError(t, err)
	require.True(t, ok)

	sendEvent, isSend := parsed.(ibc.SendPacketEvent)
	require.True(t, isSend)
	require.EqualValues(t, 7, sendEvent.Packet.Sequence)
	require.Equal(t, "channel-0", sendEvent.Packet.SourceChannel)
	require.Equal(t, "channel-1", sendEvent.Packet.DestinationChannel)
	require.Equal(t, data, sendEvent.Packet.Data)
}

func TestParseABCIEventUnknownTypeIsIgnored(t *testing.T) {
	height, err := ibc.NewHeight(1, 10)
	require.NoError(t, err)

	parsed, ok, err := parseABCIEvent(height, abci.Event{Type: "transfer"})
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, parsed)
}
