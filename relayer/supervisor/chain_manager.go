package supervisor

import (
	"context"
	"time"

	"cosmossdk.io/log"

	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/dispatch"
	"github.com/mosaicxc/relayer/relayer/event"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// drainInterval is how often a running chain manager drains its event
// pool for dispatch (spec §4.4: "the dispatcher periodically drains
// ... the implementation is free to choose").
const drainInterval = 2 * time.Second

// Aggregator start modes (spec §6 "aggregator start --mode").
const (
	ModeAggregate    = "mosaicxc"
	ModePassthrough  = "cosmosibc"
)

// ChainManager owns one registered chain's event pipeline: its
// subscriber (C3), its event pool (C4), and the dispatch mode it was
// started with (C7). Grounded on
// rust:cosmos_chain/src/chain_manager.rs's ChainManager, whose
// init/listen_events_start/events_handler/events_aggregate_send_packet_handler
// map onto Start's subscribe-and-drain loop below.
type ChainManager struct {
	handle     *chain.Handle
	dispatcher *dispatch.Dispatcher
	pool       *event.Pool
	subscriber *event.Subscriber
	logger     log.Logger

	cancel context.CancelFunc
}

// NewChainManager returns a manager for handle, dispatching through
// dispatcher once Start is called.
func NewChainManager(handle *chain.Handle, dispatcher *dispatch.Dispatcher, logger log.Logger) *ChainManager {
	return &ChainManager{
		handle:     handle,
		dispatcher: dispatcher,
		pool:       event.NewPool(),
		logger:     logger.With("component", "chain_manager", "chain_id", handle.ChainID),
	}
}

// ChainID returns the id of the chain this manager pipelines.
func (cm *ChainManager) ChainID() string {
	return cm.handle.ChainID
}

// Start subscribes to the chain's event stream, pumps every event into
// the pool, and runs a drain-and-dispatch loop at drainInterval per
// mode (spec §4.8 "starts per-chain pipelines (C3 + C4 + C7)"). It
// returns once the subscription is established; the pipeline itself
// runs until ctx is cancelled or Stop is called.
func (cm *ChainManager) Start(ctx context.Context, mode string, gtype dispatch.GroupingType) error {
	runCtx, cancel := context.WithCancel(ctx)
	cm.cancel = cancel

	sub, err := event.NewSubscriber(cm.handle.ChainID, cm.handle.Config.TendermintRPCAddr, cm.logger)
	if err != nil {
		cancel()
		return err
	}
	cm.subscriber = sub

	events, err := sub.Start(runCtx)
	if err != nil {
		cancel()
		return err
	}

	go cm.pump(runCtx, events)
	go cm.dispatchLoop(runCtx, mode, gtype)

	return nil
}

// pump moves events off the subscriber's channel into the pool one at
// a time, matching rust's listen_events_start fan-in.
func (cm *ChainManager) pump(ctx context.Context, events <-chan ibc.IbcEventWithHeight) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			cm.pool.PushEvents([]ibc.IbcEventWithHeight{ev})
		}
	}
}

// dispatchLoop drains the pool every drainInterval and dispatches
// through C7 in the requested mode (rust's events_handler /
// events_aggregate_send_packet_handler).
func (cm *ChainManager) dispatchLoop(ctx context.Context, mode string, gtype dispatch.GroupingType) {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drained := cm.pool.Drain()
			if len(drained) == 0 {
				continue
			}
			var err error
			switch mode {
			case ModeAggregate:
				err = cm.dispatcher.DispatchAggregate(ctx, drained, gtype)
			default:
				err = cm.dispatcher.DispatchPassthrough(ctx, drained)
			}
			if err != nil {
				cm.logger.Error("dispatch cycle failed", "mode", mode, "err", err)
			}
		}
	}
}

// Stop cancels the manager's pipeline and tears down its subscriber.
func (cm *ChainManager) Stop() {
	if cm.cancel != nil {
		cm.cancel()
	}
	if cm.subscriber != nil {
		_ = cm.subscriber.Close()
	}
}
