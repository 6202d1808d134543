package chain

import (
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// PackClientState packs a queried ClientState back into an Any, the
// form handshake messages (MsgConnectionOpenTry/Ack) carry the
// counterparty's self-reported client state in. Only the Tendermint
// variant is packed; any other client kind returns ErrLightClient.
func PackClientState(cs ibc.ClientState) (*codectypes.Any, error) {
	switch v := cs.(type) {
	case ibc.TendermintClientState:
		return codectypes.NewAnyWithValue(v.Inner)
	default:
		return nil, relayererrors.ErrLightClient.Wrapf("packing client state: unsupported client kind %q", cs.ClientKind())
	}
}
