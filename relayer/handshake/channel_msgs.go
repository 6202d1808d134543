package handshake

import (
	"context"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

const defaultChannelVersion = "ics20-1"

func channelVersion(side *ibc.ChannelSide) string {
	if side.Version != nil && *side.Version != "" {
		return *side.Version
	}
	return defaultChannelVersion
}

func (d *ChannelDriver) openInit(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ChannelSide) (ibc.IbcEvent, bool, error) {
	counterpartyChannelID := ""
	if srcSide.ChannelID != nil {
		counterpartyChannelID = *srcSide.ChannelID
	}

	channel := channeltypes.Channel{
		State:          channeltypes.INIT,
		Ordering:       d.Chan.Ordering,
		Counterparty:   channeltypes.NewCounterparty(srcSide.PortID, counterpartyChannelID),
		ConnectionHops: []string{dstSide.ConnectionID},
		Version:        channelVersion(dstSide),
	}

	msg := &channeltypes.MsgChannelOpenInit{
		PortId:  dstSide.PortID,
		Channel: channel,
		Signer:  dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenInitChannelEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	chanID := event.(ibc.OpenInitChannelEvent).ChannelID
	dstSide.ChannelID = &chanID
	return event, false, nil
}

func (d *ChannelDriver) openTry(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ChannelSide) (ibc.IbcEvent, bool, error) {
	if srcSide.ChannelID == nil {
		return nil, false, relayererrors.ErrInternal.Wrap("openTry: source side has no channel id")
	}

	queryHeight, err := updateClientOn(ctx, dst, dstSide.ClientID, src)
	if err != nil {
		return nil, false, err
	}

	srcChannel, proof, proofHeight, err := src.BuildChannelProofs(ctx, srcSide.PortID, *srcSide.ChannelID, queryHeight)
	if err != nil {
		return nil, false, err
	}

	previousChannelID := ""
	if dstSide.ChannelID != nil {
		previousChannelID = *dstSide.ChannelID
	}

	channel := channeltypes.Channel{
		State:          channeltypes.TRYOPEN,
		Ordering:       d.Chan.Ordering,
		Counterparty:   channeltypes.NewCounterparty(srcSide.PortID, *srcSide.ChannelID),
		ConnectionHops: []string{dstSide.ConnectionID},
		Version:        srcChannel.Version,
	}

	msg := &channeltypes.MsgChannelOpenTry{
		PortId:              dstSide.PortID,
		PreviousChannelId:   previousChannelID,
		Channel:             channel,
		CounterpartyVersion: srcChannel.Version,
		ProofInit:           proof,
		ProofHeight:         proofHeight,
		Signer:              dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenTryChannelEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	chanID := event.(ibc.OpenTryChannelEvent).ChannelID
	dstSide.ChannelID = &chanID
	return event, false, nil
}

func (d *ChannelDriver) openAck(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ChannelSide) (ibc.IbcEvent, bool, error) {
	if dstSide.ChannelID == nil || srcSide.ChannelID == nil {
		return nil, false, relayererrors.ErrInternal.Wrap("openAck: both sides must already have a channel id")
	}

	queryHeight, err := updateClientOn(ctx, dst, dstSide.ClientID, src)
	if err != nil {
		return nil, false, err
	}

	srcChannel, proof, proofHeight, err := src.BuildChannelProofs(ctx, srcSide.PortID, *srcSide.ChannelID, queryHeight)
	if err != nil {
		return nil, false, err
	}

	msg := &channeltypes.MsgChannelOpenAck{
		PortId:                dstSide.PortID,
		ChannelId:             *dstSide.ChannelID,
		CounterpartyChannelId: *srcSide.ChannelID,
		CounterpartyVersion:   srcChannel.Version,
		ProofTry:              proof,
		ProofHeight:           proofHeight,
		Signer:                dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenAckChannelEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}

	if got := event.(ibc.OpenAckChannelEvent).ChannelID; got != *dstSide.ChannelID {
		return nil, false, relayererrors.ErrHandshakeFatal.Wrapf(
			"channel id mismatch on %s: local %s, counterparty reports %s", dst.ChainID, *dstSide.ChannelID, got)
	}
	return event, false, nil
}

func (d *ChannelDriver) openConfirm(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ChannelSide) (ibc.IbcEvent, bool, error) {
	if dstSide.ChannelID == nil || srcSide.ChannelID == nil {
		return nil, false, relayererrors.ErrInternal.Wrap("openConfirm: both sides must already have a channel id")
	}

	queryHeight, err := updateClientOn(ctx, dst, dstSide.ClientID, src)
	if err != nil {
		return nil, false, err
	}

	_, proof, proofHeight, err := src.BuildChannelProofs(ctx, srcSide.PortID, *srcSide.ChannelID, queryHeight)
	if err != nil {
		return nil, false, err
	}

	msg := &channeltypes.MsgChannelOpenConfirm{
		PortId:      dstSide.PortID,
		ChannelId:   *dstSide.ChannelID,
		ProofAck:    proof,
		ProofHeight: proofHeight,
		Signer:      dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenConfirmChannelEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	return event, false, nil
}
