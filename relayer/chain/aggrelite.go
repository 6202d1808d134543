package chain

import (
	tmproto "github.com/cometbft/cometbft/proto/tendermint/types"
	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

// AggreliteHeader is the update-client header for the Aggrelite
// light-client variant (spec §1, §9 Open Question resolved in
// DESIGN.md). ibc-go has no codegen for this variant, so the message
// is hand-declared with the field tags codegen would have produced, as
// the wire message exported.ClientMessage requires.
// relayer/ibc/clientstate.go likewise declares its own Aggrelite client
// state, but as a plain Go struct without protobuf tags.
type AggreliteHeader struct {
	SignedHeader  *tmproto.SignedHeader `protobuf:"bytes,1,opt,name=signed_header,json=signedHeader,proto3" json:"signed_header,omitempty"`
	TrustedHeight clienttypes.Height    `protobuf:"bytes,2,opt,name=trusted_height,json=trustedHeight,proto3" json:"trusted_height"`
}

func (m *AggreliteHeader) Reset()         { *m = AggreliteHeader{} }
func (m *AggreliteHeader) String() string { return "AggreliteHeader" }
func (m *AggreliteHeader) ProtoMessage()  {}

// ClientType satisfies exported.ClientMessage, the interface
// MsgUpdateClient.ClientMessage unpacks into.
func (m *AggreliteHeader) ClientType() string { return ibc.ClientTypeAggrelite }
