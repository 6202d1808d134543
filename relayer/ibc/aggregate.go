package ibc

// MsgRecvPackets is the aggregate relay's wire extension (spec §6
// "Wire formats": "packets[], packets_leaf_number[], a proof list
// where each entry is a subtree proof comprising the distinct
// InnerOps for a sub-cluster, plus a signer"). ibc-go has no codegen
// for a multi-packet receive, so the message is hand-declared the same
// way relayer/chain/aggrelite.go hand-declares AggreliteHeader: with
// the field tags codegen would have produced, implementing just
// enough of proto.Message to satisfy sdk.Msg.
type MsgRecvPackets struct {
	Packets           []Packet `protobuf:"bytes,1,rep,name=packets,proto3" json:"packets"`
	PacketsLeafNumber []uint64 `protobuf:"varint,2,rep,packed,name=packets_leaf_number,json=packetsLeafNumber,proto3" json:"packets_leaf_number,omitempty"`
	ProofPaths        [][]*InnerOp `protobuf:"bytes,3,rep,name=proof_paths,json=proofPaths,proto3" json:"proof_paths,omitempty"`
	ProofHeight       Height   `protobuf:"bytes,4,opt,name=proof_height,json=proofHeight,proto3" json:"proof_height"`
	Signer            string   `protobuf:"bytes,5,opt,name=signer,proto3" json:"signer,omitempty"`
}

func (m *MsgRecvPackets) Reset()         { *m = MsgRecvPackets{} }
func (m *MsgRecvPackets) String() string { return "MsgRecvPackets" }
func (m *MsgRecvPackets) ProtoMessage()  {}
