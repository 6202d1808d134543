package handshake

import (
	"context"

	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// updateClientOn advances clientID on dst to src's latest height, the
// "before sending, the dispatcher must drive the destination chain's
// light client forward" step spec §4.5 requires ahead of every
// Try/Ack/Confirm message.
func updateClientOn(ctx context.Context, dst *chain.Handle, clientID string, src *chain.Handle) (int64, error) {
	latest, err := src.QueryLatestHeight(ctx)
	if err != nil {
		return 0, err
	}
	targetHeight := int64(latest.GetRevisionHeight())

	msg, err := dst.AdjustHeaders(ctx, clientID, src, targetHeight)
	if err != nil {
		return 0, err
	}
	if _, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg}); err != nil {
		return 0, err
	}
	return targetHeight, nil
}

// firstOf returns the first event among events matched by match. A
// ChainErrorEvent met before that match short-circuits as a
// ChainRejected error, matching spec §7's "recorded in events"
// policy; if nothing matches it returns ErrHandshakeRetryable.
func firstOf(events []ibc.IbcEventWithHeight, match func(ibc.IbcEvent) bool) (ibc.IbcEvent, error) {
	for _, e := range events {
		if errEvt, ok := e.Event.(ibc.ChainErrorEvent); ok {
			return nil, relayererrors.ErrChainRejected.Wrap(errEvt.Message)
		}
		if match(e.Event) {
			return e.Event, nil
		}
	}
	return nil, relayererrors.ErrHandshakeRetryable.Wrap("expected handshake event missing from tx result")
}

func (d *ConnectionDriver) openInit(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ConnectionSide) (ibc.IbcEvent, bool, error) {
	counterpartyConnID := ""
	if srcSide.ConnectionID != nil {
		counterpartyConnID = *srcSide.ConnectionID
	}
	counterparty := connectiontypes.NewCounterparty(srcSide.ClientID, counterpartyConnID, src.CommitmentPrefix())
	version := connectiontypes.GetCompatibleVersions()[0]

	msg := &connectiontypes.MsgConnectionOpenInit{
		ClientId:     dstSide.ClientID,
		Counterparty: counterparty,
		Version:      version,
		DelayPeriod:  uint64(d.Conn.DelayPeriod.Seconds()),
		Signer:       dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenInitConnectionEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	connID := event.(ibc.OpenInitConnectionEvent).ConnectionID
	dstSide.ConnectionID = &connID
	return event, false, nil
}

func (d *ConnectionDriver) openTry(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ConnectionSide) (ibc.IbcEvent, bool, error) {
	if srcSide.ConnectionID == nil {
		return nil, false, relayererrors.ErrInternal.Wrap("openTry: source side has no connection id")
	}

	queryHeight, err := updateClientOn(ctx, dst, dstSide.ClientID, src)
	if err != nil {
		return nil, false, err
	}

	bundle, err := src.BuildConnectionProofsAndClientState(ctx, *srcSide.ConnectionID, srcSide.ClientID, queryHeight)
	if err != nil {
		return nil, false, err
	}
	clientStateAny, err := chain.PackClientState(bundle.ClientState)
	if err != nil {
		return nil, false, err
	}

	versions := bundle.Connection.Versions
	if len(versions) == 0 {
		versions = connectiontypes.GetCompatibleVersions()
	}

	previousConnectionID := ""
	if dstSide.ConnectionID != nil {
		previousConnectionID = *dstSide.ConnectionID
	}

	msg := &connectiontypes.MsgConnectionOpenTry{
		ClientId:             dstSide.ClientID,
		PreviousConnectionId: previousConnectionID,
		ClientState:          clientStateAny,
		Counterparty:         connectiontypes.NewCounterparty(srcSide.ClientID, *srcSide.ConnectionID, src.CommitmentPrefix()),
		DelayPeriod:          uint64(d.Conn.DelayPeriod.Seconds()),
		CounterpartyVersions: versions,
		ProofHeight:          bundle.ProofHeight,
		ProofInit:            bundle.ConnectionProof,
		ProofClient:          bundle.ClientProof,
		Signer:               dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenTryConnectionEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	connID := event.(ibc.OpenTryConnectionEvent).ConnectionID
	dstSide.ConnectionID = &connID
	return event, false, nil
}

func (d *ConnectionDriver) openAck(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ConnectionSide) (ibc.IbcEvent, bool, error) {
	if dstSide.ConnectionID == nil || srcSide.ConnectionID == nil {
		return nil, false, relayererrors.ErrInternal.Wrap("openAck: both sides must already have a connection id")
	}

	queryHeight, err := updateClientOn(ctx, dst, dstSide.ClientID, src)
	if err != nil {
		return nil, false, err
	}

	bundle, err := src.BuildConnectionProofsAndClientState(ctx, *srcSide.ConnectionID, srcSide.ClientID, queryHeight)
	if err != nil {
		return nil, false, err
	}
	clientStateAny, err := chain.PackClientState(bundle.ClientState)
	if err != nil {
		return nil, false, err
	}

	version := connectiontypes.GetCompatibleVersions()[0]
	if len(bundle.Connection.Versions) > 0 {
		version = bundle.Connection.Versions[0]
	}

	msg := &connectiontypes.MsgConnectionOpenAck{
		ConnectionId:             *dstSide.ConnectionID,
		CounterpartyConnectionId: *srcSide.ConnectionID,
		Version:                  version,
		ClientState:              clientStateAny,
		ProofHeight:              bundle.ProofHeight,
		ProofTry:                 bundle.ConnectionProof,
		ProofClient:              bundle.ClientProof,
		Signer:                   dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenAckConnectionEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}

	// Reconcile: if the counterparty's on-chain record disagrees about
	// which connection id represents this side, a genuine mismatch is
	// fatal rather than retryable (spec §7 HandshakeFatal).
	if got := event.(ibc.OpenAckConnectionEvent).ConnectionID; got != *dstSide.ConnectionID {
		return nil, false, relayererrors.ErrHandshakeFatal.Wrapf(
			"connection id mismatch on %s: local %s, counterparty reports %s", dst.ChainID, *dstSide.ConnectionID, got)
	}
	return event, false, nil
}

func (d *ConnectionDriver) openConfirm(ctx context.Context, dst, src *chain.Handle, dstSide, srcSide *ibc.ConnectionSide) (ibc.IbcEvent, bool, error) {
	if dstSide.ConnectionID == nil || srcSide.ConnectionID == nil {
		return nil, false, relayererrors.ErrInternal.Wrap("openConfirm: both sides must already have a connection id")
	}

	queryHeight, err := updateClientOn(ctx, dst, dstSide.ClientID, src)
	if err != nil {
		return nil, false, err
	}

	bundle, err := src.BuildConnectionProofsAndClientState(ctx, *srcSide.ConnectionID, srcSide.ClientID, queryHeight)
	if err != nil {
		return nil, false, err
	}

	msg := &connectiontypes.MsgConnectionOpenConfirm{
		ConnectionId: *dstSide.ConnectionID,
		ProofAck:     bundle.ConnectionProof,
		ProofHeight:  bundle.ProofHeight,
		Signer:       dst.SignerAddress(),
	}

	events, err := dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	if err != nil {
		return nil, false, err
	}
	event, err := firstOf(events, func(e ibc.IbcEvent) bool {
		_, ok := e.(ibc.OpenConfirmConnectionEvent)
		return ok
	})
	if err != nil {
		return nil, false, err
	}
	return event, false, nil
}
