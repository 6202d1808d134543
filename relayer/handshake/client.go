package handshake

import (
	"context"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// CreateClient runs the client-create one-shot of spec §4.5: build a
// MsgCreateClient on dst tracking src's current header and submit it,
// returning the new client id.
func CreateClient(ctx context.Context, dst, src *chain.Handle, trustingPeriod, unbondingPeriod time.Duration) (string, ibc.IbcEvent, error) {
	msg, err := dst.BuildCreateClientMsg(ctx, src, trustingPeriod, unbondingPeriod)
	if err != nil {
		return "", nil, err
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return "", nil, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.CreateClientEvent)
		return ok
	})
	if err != nil {
		return "", nil, err
	}
	return event.(ibc.CreateClientEvent).ClientID, event, nil
}
