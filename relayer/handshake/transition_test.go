package handshake

import (
	"testing"

	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

func TestDecideConnectionActionMatchesTable(t *testing.T) {
	cases := []struct {
		a, b   connectiontypes.State
		action handshakeAction
		aToB   bool
	}{
		{connectiontypes.UNINITIALIZED, connectiontypes.UNINITIALIZED, actionOpenInit, true},
		{connectiontypes.UNINITIALIZED, connectiontypes.INIT, actionOpenTry, true},
		{connectiontypes.INIT, connectiontypes.INIT, actionOpenTry, true},
		{connectiontypes.INIT, connectiontypes.UNINITIALIZED, actionOpenTry, false},
		{connectiontypes.INIT, connectiontypes.TRYOPEN, actionOpenAck, true},
		{connectiontypes.TRYOPEN, connectiontypes.TRYOPEN, actionOpenAck, true},
		{connectiontypes.TRYOPEN, connectiontypes.INIT, actionOpenAck, false},
		{connectiontypes.OPEN, connectiontypes.TRYOPEN, actionOpenConfirm, false},
		{connectiontypes.TRYOPEN, connectiontypes.OPEN, actionOpenConfirm, true},
		{connectiontypes.OPEN, connectiontypes.OPEN, actionDone, true},
	}
	for _, c := range cases {
		action, aToB := decideConnectionAction(c.a, c.b)
		require.Equalf(t, c.action, action, "(%s, %s)", c.a, c.b)
		require.Equalf(t, c.aToB, aToB, "(%s, %s)", c.a, c.b)
	}
}

func TestDecideConnectionActionUnhandledPairRetries(t *testing.T) {
	action, _ := decideConnectionAction(connectiontypes.TRYOPEN, connectiontypes.UNINITIALIZED)
	require.Equal(t, actionRetry, action)
}

func TestDecideChannelActionMatchesTable(t *testing.T) {
	cases := []struct {
		a, b   channeltypes.State
		action handshakeAction
	}{
		{channeltypes.UNINITIALIZED, channeltypes.UNINITIALIZED, actionOpenInit},
		{channeltypes.INIT, channeltypes.UNINITIALIZED, actionOpenTry},
		{channeltypes.TRYOPEN, channeltypes.INIT, actionOpenAck},
		{channeltypes.OPEN, channeltypes.TRYOPEN, actionOpenConfirm},
		{channeltypes.OPEN, channeltypes.OPEN, actionDone},
	}
	for _, c := range cases {
		action, _ := decideChannelAction(c.a, c.b)
		require.Equalf(t, c.action, action, "(%s, %s)", c.a, c.b)
	}
}

func TestChannelVersionFallsBackToDefault(t *testing.T) {
	side := &ibc.ChannelSide{}
	require.Equal(t, defaultChannelVersion, channelVersion(side))

	version := "ics20-2"
	side.Version = &version
	require.Equal(t, version, channelVersion(side))
}
