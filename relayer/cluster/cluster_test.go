package cluster

import (
	"context"
	"testing"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ics23 "github.com/cosmos/ics23/go"
	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

func op(prefix string) *ibc.InnerOp {
	return &ics23.InnerOp{Hash: ics23.HashOp_SHA256, Prefix: []byte(prefix)}
}

func packet(seq uint64) ibc.Packet {
	return channeltypes.Packet{
		Sequence:           seq,
		SourcePort:         "transfer",
		SourceChannel:      "channel-0",
		DestinationPort:    "transfer",
		DestinationChannel: "channel-1",
		Data:               []byte("payload"),
	}
}

// TestOverlapPedestalOnly covers spec §4.6: two disjoint paths overlap
// at exactly the pedestal.
func TestOverlapPedestalOnly(t *testing.T) {
	a := []*ibc.InnerOp{op("a"), op("b")}
	b := []*ibc.InnerOp{op("x"), op("y")}
	require.Equal(t, overlapPedestal, Overlap(a, b))
}

// TestOverlapCountsSharedSuffix is scenario S1 ("cluster of two, full
// overlap"): identical proof paths overlap at pedestal + full length.
func TestOverlapCountsSharedSuffix(t *testing.T) {
	shared := []*ibc.InnerOp{op("root"), op("mid"), op("leaf")}
	require.Equal(t, overlapPedestal+3, Overlap(shared, shared))
}

// TestOverlapMatrixIsSymmetric is Testable Property 6.
func TestOverlapMatrixIsSymmetric(t *testing.T) {
	paths := [][]*ibc.InnerOp{
		{op("root"), op("a")},
		{op("root"), op("b")},
		{op("root"), op("a")},
	}
	m := Matrix(paths)
	for i := range paths {
		for j := range paths {
			require.Equal(t, m[i][j], m[j][i])
			if i == j {
				require.Equal(t, 0, m[i][j])
			}
		}
	}
}

// TestClusterOfTwoFullOverlap is spec §8 scenario S1: two packets with
// identical proof paths, groupSize large enough to hold both, seeded
// into a single cluster, must end up together.
func TestClusterOfTwoFullOverlap(t *testing.T) {
	shared := []*ibc.InnerOp{op("root"), op("a")}
	packets := []ibc.Packet{packet(1), packet(2)}
	matrix := Matrix([][]*ibc.InnerOp{shared, shared})

	clusters, ctxs := NewClusters(packets, 1)
	Assign(clusters, matrix, ctxs)
	clusters = Rebalance(clusters, matrix, 2)

	require.Len(t, clusters, 1)
	require.Len(t, clusters[0].CTXs, 2)
}

// TestRebalanceSplitsOversizedCluster is spec §8 scenario S2: five
// packets seeded into k = ⌈5/2⌉ = 3 clusters with groupSize 2 must
// split so that
// no resulting cluster exceeds groupSize (Testable Property 5), while
// every packet still appears in exactly one cluster (Property 4).
func TestRebalanceSplitsOversizedCluster(t *testing.T) {
	paths := [][]*ibc.InnerOp{
		{op("root"), op("a"), op("1")},
		{op("root"), op("a"), op("2")},
		{op("root"), op("a"), op("3")},
		{op("root"), op("b"), op("4")},
		{op("root"), op("b"), op("5")},
	}
	packets := make([]ibc.Packet, len(paths))
	for i := range paths {
		packets[i] = packet(uint64(i + 1))
	}
	matrix := Matrix(paths)

	clusters := []Cluster{
		{Center: 0, CTXs: []CTX{{Num: 0, Packet: packets[0]}}},
		{Center: 2, CTXs: []CTX{{Num: 2, Packet: packets[2]}}},
		{Center: 3, CTXs: []CTX{{Num: 3, Packet: packets[3]}}},
	}
	all := make([]CTX, len(packets))
	for i, p := range packets {
		all[i] = CTX{Num: i, Packet: p}
	}
	Assign(clusters, matrix, all)

	result := Rebalance(clusters, matrix, 2)

	total := 0
	for _, c := range result {
		require.LessOrEqual(t, len(c.CTXs), 2)
		total += len(c.CTXs)
	}
	require.Equal(t, len(packets), total)
}

// TestRebalanceHandlesAllOversizedWithoutPanic exercises the
// empty-`kept` hardening: when every cluster from a single round is
// simultaneously oversized, Rebalance must still terminate and
// conserve every CTX rather than indexing into an empty cluster list.
func TestRebalanceHandlesAllOversizedWithoutPanic(t *testing.T) {
	paths := make([][]*ibc.InnerOp, 6)
	for i := range paths {
		paths[i] = []*ibc.InnerOp{op("root")}
	}
	packets := make([]ibc.Packet, len(paths))
	for i := range paths {
		packets[i] = packet(uint64(i + 1))
	}
	matrix := Matrix(paths)

	clusters := []Cluster{
		{Center: 0, CTXs: []CTX{{Num: 0, Packet: packets[0]}, {Num: 1, Packet: packets[1]}, {Num: 2, Packet: packets[2]}}},
		{Center: 3, CTXs: []CTX{{Num: 3, Packet: packets[3]}, {Num: 4, Packet: packets[4]}, {Num: 5, Packet: packets[5]}}},
	}

	require.NotPanics(t, func() {
		result := Rebalance(clusters, matrix, 1)
		total := 0
		for _, c := range result {
			total += len(c.CTXs)
		}
		require.Equal(t, len(packets), total)
	})
}

type fakeProofSource struct {
	paths map[uint64][]*ibc.InnerOp
	fail  map[uint64]bool
}

func (f *fakeProofSource) QueryPacketsMerkleProofInfos(ctx context.Context, portID, channelID string, sequences []uint64, queryHeight int64) ([]ibc.MerkleProofInfo, error) {
	seq := sequences[0]
	if f.fail[seq] {
		return nil, context.DeadlineExceeded
	}
	return []ibc.MerkleProofInfo{{FullPath: f.paths[seq]}}, nil
}

// TestBuildGroupsDropsFailedPacketWithoutFailingBatch is spec §4.6
// step 1's failure-isolation rule: a single packet's proof-query
// failure must drop only that packet, not abort the whole cycle.
func TestBuildGroupsDropsFailedPacketWithoutFailingBatch(t *testing.T) {
	src := &fakeProofSource{
		paths: map[uint64][]*ibc.InnerOp{
			1: {op("root"), op("a")},
			2: {op("root"), op("a")},
			3: {op("root"), op("b")},
		},
		fail: map[uint64]bool{2: true},
	}
	events := []ibc.IbcEventWithHeight{
		{Event: ibc.SendPacketEvent{Packet: packet(1)}},
		{Event: ibc.SendPacketEvent{Packet: packet(2)}},
		{Event: ibc.SendPacketEvent{Packet: packet(3)}},
	}

	groups, err := BuildGroups(context.Background(), src, "transfer", "channel-0", 100, events, 2)
	require.NoError(t, err)

	total := 0
	for _, g := range groups {
		total += len(g)
	}
	require.Equal(t, 2, total)
}

// TestBuildGroupsIgnoresNonSendPacketEvents confirms only SendPacket
// events feed the clustering engine (spec §4.6 step 1).
func TestBuildGroupsIgnoresNonSendPacketEvents(t *testing.T) {
	src := &fakeProofSource{paths: map[uint64][]*ibc.InnerOp{1: {op("root")}}}
	events := []ibc.IbcEventWithHeight{
		{Event: ibc.NewBlockEvent{}},
		{Event: ibc.SendPacketEvent{Packet: packet(1)}},
	}

	groups, err := BuildGroups(context.Background(), src, "transfer", "channel-0", 100, events, 2)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 1)
}
