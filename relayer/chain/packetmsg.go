package chain

import (
	"context"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v10/modules/core/24-host"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

// BuildRecvPacketMsg builds the standard ibc-go receive message for
// one packet, proved against h (the packet's source chain) at
// queryHeight (spec §4.7 per-packet passthrough mode: "build a
// RecvPacket message with a merkle proof of the packet commitment at
// H").
func (h *Handle) BuildRecvPacketMsg(ctx context.Context, packet ibc.Packet, queryHeight int64, signer string) (*channeltypes.MsgRecvPacket, error) {
	key := host.PacketCommitmentPath(packet.SourcePort, packet.SourceChannel, packet.Sequence)
	_, proof, proofHeight, err := h.abciQuery(ctx, []byte(key), queryHeight, true)
	if err != nil {
		return nil, err
	}
	return channeltypes.NewMsgRecvPacket(packet, proof, proofHeight, signer), nil
}

// BuildAggregateRecvPacketsMsg builds the custom multi-packet receive
// message for one cluster (spec §4.7 aggregate mode: "one aggregated
// RecvPackets message carrying the packets plus a single compact proof
// bundle derived from the shared inner path suffix ... the message
// enumerates packets in cluster order and attaches one proof object
// whose size is proportional to the union of distinct inner-ops").
// proofPaths must be supplied in the same order as packets (the
// clustering engine's Cluster.CTXs order); the union-of-distinct-ops
// compaction happens here rather than in the clustering engine, which
// only ever deals in overlap scores, not proof bytes.
func (h *Handle) BuildAggregateRecvPacketsMsg(ctx context.Context, packets []ibc.Packet, proofPaths [][]*ibc.InnerOp, queryHeight int64, signer string) (*ibc.MsgRecvPackets, error) {
	proofHeight, err := ibc.NewHeight(ibc.ParseChainRevision(h.ChainID), uint64(queryHeight))
	if err != nil {
		return nil, err
	}

	leafNumbers := make([]uint64, len(packets))
	compacted := make([][]*ibc.InnerOp, len(packets))
	seen := make(map[string]struct{})
	for i, p := range packets {
		leafNumbers[i] = p.Sequence
		var distinct []*ibc.InnerOp
		for _, op := range proofPaths[i] {
			k := string(op.Prefix) + "|" + string(op.Suffix)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			distinct = append(distinct, op)
		}
		compacted[i] = distinct
	}

	return &ibc.MsgRecvPackets{
		Packets:           packets,
		PacketsLeafNumber: leafNumbers,
		ProofPaths:        compacted,
		ProofHeight:       proofHeight,
		Signer:            signer,
	}, nil
}
