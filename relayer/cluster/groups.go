package cluster

import (
	"context"
	"math"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

// ProofSource is the subset of *chain.Handle the clustering engine
// needs: a per-packet Merkle proof-path lookup. Declared here rather
// than imported from relayer/chain so relayer/cluster never depends on
// relayer/chain (spec §3 keeps C6 a pure function of proof paths).
type ProofSource interface {
	QueryPacketsMerkleProofInfos(ctx context.Context, portID, channelID string, sequences []uint64, queryHeight int64) ([]ibc.MerkleProofInfo, error)
}

// BuildGroups is the C6 entrypoint (spec §4.6): given the SendPacket
// events drained from one channel's event pool, it queries each
// packet's Merkle proof path individually (not batched, unlike
// chain.QueryPacketsMerkleProofInfos's native multi-sequence form) so
// that one packet's failed query only drops that packet from this
// cycle rather than failing the whole batch (spec §4.6 step 1: "If the
// query fails for any packet, that packet is dropped from this cycle,
// not fatal"), computes the overlap matrix, seeds and assigns k =
// ceil(n/groupSize) clusters, rebalances oversized clusters, and
// returns each surviving cluster's events in that cluster's own CTX
// order (its seed packet first).
func BuildGroups(ctx context.Context, src ProofSource, portID, channelID string, queryHeight int64, events []ibc.IbcEventWithHeight, groupSize int) ([][]ibc.IbcEventWithHeight, error) {
	var packets []ibc.Packet
	var paths [][]*ibc.InnerOp
	records := make(map[uint64]ibc.IbcEventWithHeight)
	for _, ev := range events {
		sp, ok := ev.Event.(ibc.SendPacketEvent)
		if !ok {
			continue
		}
		infos, err := src.QueryPacketsMerkleProofInfos(ctx, portID, channelID, []uint64{sp.Packet.Sequence}, queryHeight)
		if err != nil || len(infos) == 0 {
			continue
		}
		packets = append(packets, sp.Packet)
		paths = append(paths, infos[0].FullPath)
		records[sp.Packet.Sequence] = ev
	}
	if len(packets) == 0 {
		return nil, nil
	}

	matrix := Matrix(paths)
	k := int(math.Ceil(float64(len(packets)) / float64(groupSize)))
	if k < 1 {
		k = 1
	}

	clusters, ctxs := NewClusters(packets, k)
	Assign(clusters, matrix, ctxs)
	clusters = Rebalance(clusters, matrix, groupSize)

	groups := make([][]ibc.IbcEventWithHeight, 0, len(clusters))
	for _, c := range clusters {
		g := Group(c, records)
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups, nil
}
