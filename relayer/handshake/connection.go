// Package handshake implements the three handshake state machines of
// spec §4.5: client-create, connection-open, and channel-open. All
// three share the shape rust:cosmos_chain/src/connection.rs and
// channel.rs establish — repeatedly observe the (a_state, b_state)
// pair and send the single next message the table prescribes — but
// are reworked here into a direct "which side is behind" dispatch
// instead of the original's build-on-flipped-self indirection, which
// has no clean idiomatic-Go equivalent and obscures which chain a
// message actually lands on.
package handshake

import (
	"context"

	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// ConnectionDriver drives the connection-open handshake between two
// chain handles for one relayer-level Connection object (spec §4.5).
type ConnectionDriver struct {
	A, B *chain.Handle
	Conn ibc.Connection
}

func connectionState(ctx context.Context, h *chain.Handle, side ibc.ConnectionSide) (connectiontypes.State, error) {
	if side.ConnectionID == nil {
		return connectiontypes.UNINITIALIZED, nil
	}
	conn, err := h.QueryConnection(ctx, *side.ConnectionID)
	if err != nil {
		return connectiontypes.UNINITIALIZED, err
	}
	return conn.State, nil
}

// handshakeAction names which message a state pair requires next.
type handshakeAction int

const (
	actionRetry handshakeAction = iota
	actionDone
	actionOpenInit
	actionOpenTry
	actionOpenAck
	actionOpenConfirm
)

// decideConnectionAction implements the pure transition table of spec
// §4.5. aToB is true when the message belongs on the A side's chain
// (dst = A, src = B); false when it belongs on B's.
func decideConnectionAction(aState, bState connectiontypes.State) (action handshakeAction, aToB bool) {
	switch {
	case aState == connectiontypes.UNINITIALIZED && bState == connectiontypes.UNINITIALIZED:
		return actionOpenInit, true
	case (aState == connectiontypes.UNINITIALIZED && bState == connectiontypes.INIT) ||
		(aState == connectiontypes.INIT && bState == connectiontypes.INIT):
		return actionOpenTry, true
	case aState == connectiontypes.INIT && bState == connectiontypes.UNINITIALIZED:
		return actionOpenTry, false
	case (aState == connectiontypes.INIT && bState == connectiontypes.TRYOPEN) ||
		(aState == connectiontypes.TRYOPEN && bState == connectiontypes.TRYOPEN):
		return actionOpenAck, true
	case aState == connectiontypes.TRYOPEN && bState == connectiontypes.INIT:
		return actionOpenAck, false
	case aState == connectiontypes.OPEN && bState == connectiontypes.TRYOPEN:
		return actionOpenConfirm, false
	case aState == connectiontypes.TRYOPEN && bState == connectiontypes.OPEN:
		return actionOpenConfirm, true
	case aState == connectiontypes.OPEN && bState == connectiontypes.OPEN:
		return actionDone, true
	default:
		return actionRetry, true
	}
}

// Step observes (a_state, b_state) and submits the single next
// message the table of spec §4.5 prescribes, returning the event
// extracted from it. done is true once both ends report Open.
func (d *ConnectionDriver) Step(ctx context.Context) (event ibc.IbcEvent, done bool, err error) {
	aState, err := connectionState(ctx, d.A, d.Conn.SideA)
	if err != nil {
		return nil, false, err
	}
	bState, err := connectionState(ctx, d.B, d.Conn.SideB)
	if err != nil {
		return nil, false, err
	}

	action, aToB := decideConnectionAction(aState, bState)
	dst, src, dstSide, srcSide := d.B, d.A, &d.Conn.SideB, &d.Conn.SideA
	if aToB {
		dst, src, dstSide, srcSide = d.A, d.B, &d.Conn.SideA, &d.Conn.SideB
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
			"connection state pair (%s, %s) not yet matured", aState, bState)
	}
}
