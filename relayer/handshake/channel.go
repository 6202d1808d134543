package handshake

import (
	"context"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// ChannelDriver drives the channel-open handshake between two chain
// handles for one relayer-level Channel object (spec §4.5: "identical
// table structure over {Uninit, Init, TryOpen, Open}").
type ChannelDriver struct {
	A, B *chain.Handle
	Chan ibc.Channel
}

func channelState(ctx context.Context, h *chain.Handle, side ibc.ChannelSide) (channeltypes.State, error) {
	if side.ChannelID == nil {
		return channeltypes.UNINITIALIZED, nil
	}
	ch, err := h.QueryChannel(ctx, side.PortID, *side.ChannelID)
	if err != nil {
		return channeltypes.UNINITIALIZED, err
	}
	return ch.State, nil
}

// decideChannelAction is decideConnectionAction's analogue over
// channeltypes.State (spec §4.5: "identical table structure").
func decideChannelAction(aState, bState channeltypes.State) (action handshakeAction, aToB bool) {
	switch {
	case aState == channeltypes.UNINITIALIZED && bState == channeltypes.UNINITIALIZED:
		return actionOpenInit, true
	case (aState == channeltypes.UNINITIALIZED && bState == channeltypes.INIT) ||
		(aState == channeltypes.INIT && bState == channeltypes.INIT):
		return actionOpenTry, true
	case aState == channeltypes.INIT && bState == channeltypes.UNINITIALIZED:
		return actionOpenTry, false
	case (aState == channeltypes.INIT && bState == channeltypes.TRYOPEN) ||
		(aState == channeltypes.TRYOPEN && bState == channeltypes.TRYOPEN):
		return actionOpenAck, true
	case aState == channeltypes.TRYOPEN && bState == channeltypes.INIT:
		return actionOpenAck, false
	case aState == channeltypes.OPEN && bState == channeltypes.TRYOPEN:
		return actionOpenConfirm, false
	case aState == channeltypes.TRYOPEN && bState == channeltypes.OPEN:
		return actionOpenConfirm, true
	case aState == channeltypes.OPEN && bState == channeltypes.OPEN:
		return actionDone, true
	default:
		return actionRetry, true
	}
}

// Step mirrors ConnectionDriver.Step over the channel state table.
func (d *ChannelDriver) Step(ctx context.Context) (event ibc.IbcEvent, done bool, err error) {
	aState, err := channelState(ctx, d.A, d.Chan.SideA)
	if err != nil {
		return nil, false, err
	}
	bState, err := channelState(ctx, d.B, d.Chan.SideB)
	if err != nil {
		return nil, false, err
	}

	action, aToB := decideChannelAction(aState, bState)
	dst, src, dstSide, srcSide := d.B, d.A, &d.Chan.SideB, &d.Chan.SideA
	if aToB {
		dst, src, dstSide, srcSide = d.A, d.B, &d.Chan.SideA, &d.Chan.SideB
	}

	switch action {
	case actionOpenInit:
		return d.openInit(ctx, dst, src, dstSide, srcSide)
	case actionOpenTry:
		return d.openTry(ctx, dst, src, dstSide, srcSide)
	case actionOpenAck:
		return d.openAck(ctx, dst, src, dstSide, srcSide)
	case actionOpenConfirm:
		return d.openConfirm(ctx, dst, src, dstSide, srcSide)
	case actionDone:
		return nil, true, nil
	default:
		return nil, false, relayererrors.ErrHandshakeRetryable.Wrapf(
			"channel state pair (%s, %s) not yet matured", aState, bState)
	}
}
