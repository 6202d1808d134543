package event

import (
	"context"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	tmtypes "github.com/cometbft/cometbft/types"
	"cosmossdk.io/log"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// subscriberName identifies this relayer's subscriptions to the
// Tendermint RPC subscription registry; must be stable across
// reconnects so a stale subscription from a previous connection never
// collides with a new one.
const subscriberName = "mosaicxc-relayer"

// queries are the subscription filters of spec §4.3: a NewBlock
// stream plus one stream per IBC core module, matching
// rust:cosmos_chain/src/query/websocket/event_source.rs's
// new_block/ibc_client/ibc_connection/ibc_channel queries.
var queries = []string{
	"tm.event='NewBlock'",
	"tm.event='Tx' AND message.module='ibc_client'",
	"tm.event='Tx' AND message.module='ibc_connection'",
	"tm.event='Tx' AND message.module='ibc_channel'",
}

// Subscriber streams IBC events from a single chain's Tendermint RPC
// websocket endpoint (spec §4.3, C3). It fans every subscribed query
// into one channel of IbcEventWithHeight, parsed via parseABCIEvent.
type Subscriber struct {
	chainID string
	client  *rpchttp.HTTP
	logger  log.Logger
}

// NewSubscriber dials addr (a Tendermint RPC address, e.g.
// "tcp://localhost:26657") and returns a Subscriber for chainID. The
// underlying client is not yet subscribed or started; call Start.
func NewSubscriber(chainID, addr string, logger log.Logger) (*Subscriber, error) {
	client, err := rpchttp.New(addr, "/websocket")
	if err != nil {
		return nil, relayererrors.ErrTransport.Wrapf("dialing tendermint rpc %s: %v", addr, err)
	}
	return &Subscriber{
		chainID: chainID,
		client:  client,
		logger:  logger.With("component", "event_subscriber", "chain_id", chainID),
	}, nil
}

// Start connects the underlying RPC client, subscribes to every query
// in queries, and returns a channel of parsed events. The channel is
// closed when ctx is cancelled. Malformed events (an ABCI event that
// matched a query but failed to decode) are dropped and counted, not
// propagated (spec §9 design decision, DESIGN.md).
func (s *Subscriber) Start(ctx context.Context) (<-chan ibc.IbcEventWithHeight, error) {
	if !s.client.IsRunning() {
		if err := s.client.Start(); err != nil {
			return nil, relayererrors.ErrTransport.Wrapf("starting tendermint rpc client: %v", err)
		}
	}

	out := make(chan ibc.IbcEventWithHeight, 256)

	for _, query := range queries {
		sub, err := s.client.Subscribe(ctx, subscriberName, query, 256)
		if err != nil {
			return nil, relayererrors.ErrTransport.Wrapf("subscribing to %q: %v", query, err)
		}
		go s.pump(ctx, query, sub, out)
	}

	go func() {
		<-ctx.Done()
		unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.client.UnsubscribeAll(unsubCtx, subscriberName); err != nil {
			s.logger.Error("unsubscribe failed on shutdown", "err", err)
		}
		close(out)
	}()

	return out, nil
}

func (s *Subscriber) pump(ctx context.Context, query string, sub <-chan coretypes.ResultEvent, out chan<- ibc.IbcEventWithHeight) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-sub:
			if !ok {
				return
			}
			events, err := s.toIbcEvents(res)
			if err != nil {
				malformedEvents.WithLabelValues(s.chainID, query).Inc()
				s.logger.Error("dropping malformed event", "query", query, "err", err)
				continue
			}
			for _, ev := range events {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// toIbcEvents converts one RPC ResultEvent into zero or more
// IbcEventWithHeight, matching
// rust:cosmos_chain/src/query/websocket/collect_event.rs's
// extract_events branch on TmRpcEventData::NewBlock / ::Tx.
func (s *Subscriber) toIbcEvents(res coretypes.ResultEvent) ([]ibc.IbcEventWithHeight, error) {
	switch data := res.Data.(type) {
	case tmtypes.EventDataNewBlock:
		height, err := ibc.NewHeight(ibc.ParseChainRevision(s.chainID), uint64(data.Block.Header.Height))
		if err != nil {
			return nil, relayererrors.ErrDecode.Wrapf("new block height: %v", err)
		}
		return []ibc.IbcEventWithHeight{{Event: ibc.NewBlockEvent{}, Height: height}}, nil

	case tmtypes.EventDataTx:
		height, err := ibc.NewHeight(ibc.ParseChainRevision(s.chainID), uint64(data.TxResult.Height))
		if err != nil {
			return nil, relayererrors.ErrDecode.Wrapf("tx height: %v", err)
		}
		return s.extractTxEvents(height, data.TxResult.Result.Events)

	default:
		return nil, nil
	}
}

func (s *Subscriber) extractTxEvents(height ibc.Height, events []abci.Event) ([]ibc.IbcEventWithHeight, error) {
	var out []ibc.IbcEventWithHeight
	var firstErr error
	for _, ev := range events {
		parsed, ok, err := parseABCIEvent(height, ev)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			continue
		}
		out = append(out, ibc.IbcEventWithHeight{Event: parsed, Height: height})
	}
	return out, firstErr
}

// Close stops the underlying RPC client.
func (s *Subscriber) Close() error {
	if !s.client.IsRunning() {
		return nil
	}
	if err := s.client.Stop(); err != nil {
		return relayererrors.ErrTransport.Wrapf("stopping tendermint rpc client %s: %v", s.chainID, err)
	}
	return nil
}
