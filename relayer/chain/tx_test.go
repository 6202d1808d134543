package chain

import (
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/stretchr/testify/require"
)

func testMsg(t *testing.T, amount int64) sdk.Msg {
	t.Helper()
	return &banktypes.MsgSend{
		FromAddress: "cosmos1from",
		ToAddress:   "cosmos1to",
		Amount:      sdk.NewCoins(sdk.NewInt64Coin("stake", amount)),
	}
}

func TestBatchMessagesRespectsMaxMsgNum(t *testing.T) {
	msgs := []sdk.Msg{testMsg(t, 1), testMsg(t, 2), testMsg(t, 3), testMsg(t, 4), testMsg(t, 5)}

	batches, err := batchMessages(msgs, 2, 0)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[1], 2)
	require.Len(t, batches[2], 1)
}

func TestBatchMessagesRespectsMaxTxSize(t *testing.T) {
	msgs := []sdk.Msg{testMsg(t, 1), testMsg(t, 2), testMsg(t, 3)}

	singleMsgSize := msgEncodedSize(t, msgs[0])
	batches, err := batchMessages(msgs, 100, uint64(singleMsgSize+1))
	require.NoError(t, err)
	for _, batch := range batches {
		require.Len(t, batch, 1)
	}
}

func TestBatchMessagesRejectsOversizedMessage(t *testing.T) {
	msgs := []sdk.Msg{testMsg(t, 1)}
	size := msgEncodedSize(t, msgs[0])

	_, err := batchMessages(msgs, 100, uint64(size-1))
	require.Error(t, err)
}

func msgEncodedSize(t *testing.T, msg sdk.Msg) int {
	t.Helper()
	protoMsg, ok := msg.(interface{ Size() int })
	require.True(t, ok)
	return protoMsg.Size()
}

func TestCapGas(t *testing.T) {
	require.EqualValues(t, 100, capGas(100, 0))
	require.EqualValues(t, 100, capGas(100, 200))
	require.EqualValues(t, 150, capGas(200, 150))
}

func TestTxPollTimeoutScalesFromMaxBlockTime(t *testing.T) {
	require.Equal(t, 30*time.Second, txPollTimeout(0))
	require.Equal(t, 50*time.Second, txPollTimeout(5*time.Second))
}
