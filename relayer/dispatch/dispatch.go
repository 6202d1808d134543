package dispatch

import (
	"context"

	"cosmossdk.io/log"
	"github.com/samber/lo"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"golang.org/x/sync/errgroup"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/cluster"
	"github.com/mosaicxc/relayer/relayer/ibc"
	"github.com/mosaicxc/relayer/relayer/registry"
)

// ChainResolver looks up a live chain handle by chain id, the
// indirection the supervisor's `ChainId → ChainManager` map provides
// (spec §4.8) without this package importing the supervisor.
type ChainResolver interface {
	Chain(chainID string) (*chain.Handle, bool)
}

// Dispatcher is the aggregate dispatcher (C7, spec §4.7): it drains a
// source chain's event pool and, per mode, submits RecvPacket messages
// to the destination chain, recording every completed submission.
type Dispatcher struct {
	Registry  *registry.ChannelRegistry
	Resolver  ChainResolver
	Completed *CompletedLog
	GroupSize int
	logger    log.Logger
}

// New returns a Dispatcher reading channel routing from reg and
// resolving destination chains through resolver.
func New(reg *registry.ChannelRegistry, resolver ChainResolver, groupSize int, logger log.Logger) *Dispatcher {
	return &Dispatcher{
		Registry:  reg,
		Resolver:  resolver,
		Completed: NewCompletedLog(),
		GroupSize: groupSize,
		logger:    logger.With("component", "dispatcher"),
	}
}

// bucket is one (channel, height) group of drained SendPacket events
// (spec §4.4: "groups drained events by (source_channel_key,
// source_height) before clustering").
type bucket struct {
	channelKey string
	height     uint64
	events     []ibc.IbcEventWithHeight
}

// bucketEvents groups events by their routed channel key and observed
// height, dropping any SendPacket whose channel is not registered
// (spec §4.4, §4.7).
func (d *Dispatcher) bucketEvents(events []ibc.IbcEventWithHeight) ([]bucket, error) {
	type keyed struct {
		key string
		ev  ibc.IbcEventWithHeight
	}
	var rows []keyed
	for _, ev := range events {
		sp, ok := ev.Event.(ibc.SendPacketEvent)
		if !ok {
			continue
		}
		ch, found, err := d.Registry.QueryByPacket(sp.Packet)
		if err != nil {
			return nil, err
		}
		if !found {
			d.logger.Info("dropping send_packet for unregistered channel", "sequence", sp.Packet.Sequence)
			continue
		}
		key, err := registry.Key(ch.Key())
		if err != nil {
			return nil, err
		}
		rows = append(rows, keyed{key: key, ev: ev})
	}

	groups := lo.GroupBy(rows, func(r keyed) [2]any {
		return [2]any{r.key, r.ev.Height.RevisionHeight}
	})

	buckets := make([]bucket, 0, len(groups))
	for compound, rs := range groups {
		events := make([]ibc.IbcEventWithHeight, len(rs))
		for i, r := range rs {
			events[i] = r.ev
		}
		buckets = append(buckets, bucket{
			channelKey: compound[0].(string),
			height:     compound[1].(uint64),
			events:     events,
		})
	}
	return buckets, nil
}

// DispatchPassthrough is cosmosibc mode (spec §4.7): every SendPacket
// drained is relayed individually, with no clustering.
func (d *Dispatcher) DispatchPassthrough(ctx context.Context, events []ibc.IbcEventWithHeight) error {
	buckets, err := d.bucketEvents(events)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range buckets {
		b := b
		g.Go(func() error {
			return d.sendBucketPerPacket(gctx, b)
		})
	}
	return g.Wait()
}

// DispatchAggregate is mosaicxc mode (spec §4.7): each (channel,
// height) bucket is run through the clustering engine (C6) per gtype,
// and every resulting cluster submitted as one aggregated message.
func (d *Dispatcher) DispatchAggregate(ctx context.Context, events []ibc.IbcEventWithHeight, gtype GroupingType) error {
	if gtype == None {
		return nil
	}
	if gtype == NonGrouping {
		return d.DispatchPassthrough(ctx, events)
	}

	buckets, err := d.bucketEvents(events)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range buckets {
		b := b
		g.Go(func() error {
			return d.sendBucketClustered(gctx, b, gtype)
		})
	}
	return g.Wait()
}

func (d *Dispatcher) channelAndChains(b bucket) (ibc.Channel, *chain.Handle, *chain.Handle, error) {
	ch, ok := d.Registry.QueryByKey(b.channelKey)
	if !ok {
		return ibc.Channel{}, nil, nil, relayererrors.ErrIdentifier.Wrapf("channel key %s not registered", b.channelKey)
	}
	src, ok := d.Resolver.Chain(ch.SideA.Chain)
	if !ok {
		return ibc.Channel{}, nil, nil, relayererrors.ErrIdentifier.Wrapf("chain %s not registered", ch.SideA.Chain)
	}
	dst, ok := d.Resolver.Chain(ch.SideB.Chain)
	if !ok {
		return ibc.Channel{}, nil, nil, relayererrors.ErrIdentifier.Wrapf("chain %s not registered", ch.SideB.Chain)
	}
	return ch, src, dst, nil
}

// sendBucketPerPacket relays every SendPacket in b individually (spec
// §4.7 per-packet passthrough): drive the destination client forward,
// build a RecvPacket with a proof at b.height, submit.
func (d *Dispatcher) sendBucketPerPacket(ctx context.Context, b bucket) error {
	ch, src, dst, err := d.channelAndChains(b)
	if err != nil {
		return err
	}

	if err := updateDestinationClient(ctx, dst, ch.SideB.ClientID, src, int64(b.height)); err != nil {
		return err
	}

	for _, ev := range b.events {
		sp := ev.Event.(ibc.SendPacketEvent)
		msg, err := src.BuildRecvPacketMsg(ctx, sp.Packet, int64(b.height), dst.SignerAddress())
		if err != nil {
			d.logger.Error("dropping packet after proof query failure", "sequence", sp.Packet.Sequence, "error", err)
			continue
		}
		resultEvents, gasUsed, err := dst.SendMessagesAndWaitCommitWithGas(ctx, []sdk.Msg{msg})
		if err != nil {
			d.logger.Error("packet submission failed", "sequence", sp.Packet.Sequence, "error", err)
			continue
		}
		d.Completed.Append(CompletedTx{Events: resultEvents, GasUsed: gasUsed})
	}
	return nil
}

// sendBucketClustered is the mosaicxc aggregate path (spec §4.7): run
// C6 over b's events, then submit one aggregated message per cluster.
// Random and ClusterGrouping both rebalance — gtype only distinguishes
// them for DispatchAggregate's NonGrouping/None short-circuit above.
func (d *Dispatcher) sendBucketClustered(ctx context.Context, b bucket, gtype GroupingType) error {
	ch, src, dst, err := d.channelAndChains(b)
	if err != nil {
		return err
	}

	var srcChannelID string
	if ch.SideA.ChannelID != nil {
		srcChannelID = *ch.SideA.ChannelID
	}
	groups, err := cluster.BuildGroups(ctx, src, ch.SideA.PortID, srcChannelID, int64(b.height), b.events, d.GroupSize)
	if err != nil {
		return err
	}

	if err := updateDestinationClient(ctx, dst, ch.SideB.ClientID, src, int64(b.height)); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			return d.sendCluster(gctx, src, dst, group, int64(b.height))
		})
	}
	return g.Wait()
}

func (d *Dispatcher) sendCluster(ctx context.Context, src, dst *chain.Handle, group []ibc.IbcEventWithHeight, queryHeight int64) error {
	packets := make([]ibc.Packet, 0, len(group))
	paths := make([][]*ibc.InnerOp, 0, len(group))
	for _, ev := range group {
		sp := ev.Event.(ibc.SendPacketEvent)
		infos, err := src.QueryPacketsMerkleProofInfos(ctx, sp.Packet.SourcePort, sp.Packet.SourceChannel, []uint64{sp.Packet.Sequence}, queryHeight)
		if err != nil || len(infos) == 0 {
			d.logger.Error("dropping packet from cluster after proof re-query failure", "sequence", sp.Packet.Sequence)
			continue
		}
		packets = append(packets, sp.Packet)
		paths = append(paths, infos[0].FullPath)
	}
	if len(packets) == 0 {
		return nil
	}

	msg, err := src.BuildAggregateRecvPacketsMsg(ctx, packets, paths, queryHeight, dst.SignerAddress())
	if err != nil {
		return err
	}

	resultEvents, gasUsed, err := dst.SendMessagesAndWaitCommitWithGas(ctx, []sdk.Msg{msg})
	if err != nil {
		d.logger.Error("cluster submission failed", "size", len(packets), "error", err)
		return nil
	}
	d.Completed.Append(CompletedTx{Events: resultEvents, GasUsed: gasUsed})
	return nil
}

// updateDestinationClient drives dst's light client for clientID
// forward to queryHeight before a proof generated at that height can
// be verified against it (spec §4.5's update-before-prove rule, reused
// here since aggregate dispatch has the same requirement as the
// handshake steps).
func updateDestinationClient(ctx context.Context, dst *chain.Handle, clientID string, src *chain.Handle, queryHeight int64) error {
	msg, err := dst.AdjustHeaders(ctx, clientID, src, queryHeight)
	if err != nil {
		return err
	}
	_, err = dst.SendMessagesAndWaitCommit(ctx, []sdk.Msg{msg})
	return err
}
