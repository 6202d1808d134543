package supervisor

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/log"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/mosaicxc/relayer/pkg/config"
	"github.com/mosaicxc/relayer/pkg/keyring"
	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/chain"
	"github.com/mosaicxc/relayer/relayer/dispatch"
	"github.com/mosaicxc/relayer/relayer/handshake"
	"github.com/mosaicxc/relayer/relayer/ibc"
	"github.com/mosaicxc/relayer/relayer/registry"
)

// Supervisor is the C8 component of spec §4.8: it owns the registered
// chains, the channel pool, one ChainManager per registered chain, and
// the completed-tx log, and is the single entrypoint the CLI layer
// (cmd/mosaicxc) drives. Grounded on
// rust:MosaicXC/src/supervisor.rs's Supervisor struct and cmd_match.
type Supervisor struct {
	Chains    *RegisteredChains
	Channels  *registry.ChannelRegistry
	Completed *dispatch.CompletedLog

	groupSize int
	logger    log.Logger

	mu       sync.Mutex
	managers map[string]*ChainManager
}

// New returns an empty Supervisor. groupSize is the `G` parameter the
// clustering engine (C6) rebalances against in aggregate mode.
func New(groupSize int, logger log.Logger) *Supervisor {
	return &Supervisor{
		Chains:    NewRegisteredChains(),
		Channels:  registry.New(),
		Completed: dispatch.NewCompletedLog(),
		groupSize: groupSize,
		logger:    logger.With("component", "supervisor"),
		managers:  make(map[string]*ChainManager),
	}
}

// RegisterChain is `chain register -c <path>` (spec §6): loads the
// chain config and its key file, builds a signer and chain handle,
// and registers both the handle and a fresh ChainManager for it.
func (s *Supervisor) RegisterChain(cfgPath string) (string, error) {
	cfg, err := config.LoadChainConfig(cfgPath)
	if err != nil {
		return "", err
	}
	kf, err := config.LoadKeyFile(cfg.KeyPath)
	if err != nil {
		return "", err
	}
	signer, err := keyring.LoadSigner(kf, cfg.HDPath)
	if err != nil {
		return "", err
	}

	handle, err := chain.New(cfg, signer, s.logger)
	if err != nil {
		return "", err
	}

	s.Chains.Add(handle)

	resolver := s.Chains
	dispatcher := dispatch.New(s.Channels, resolver, s.groupSize, s.logger)
	dispatcher.Completed = s.Completed

	s.mu.Lock()
	s.managers[handle.ChainID] = NewChainManager(handle, dispatcher, s.logger)
	s.mu.Unlock()

	return handle.ChainID, nil
}

// QueryAllChainIDs is `chain queryall` (spec §6).
func (s *Supervisor) QueryAllChainIDs() []string {
	return s.Chains.AllChainIDs()
}

// CreateClient is `client create -s <src> -t <dst> --clienttype
// <tendermint|aggrelite>` (spec §6): it derives trusting_period and
// unbonding_period the way spec §4.5 prescribes (`trusting_period =
// min(config, 2·unbonding/3)`) and runs the one-shot client-create
// handshake step, whose message sets `max_clock_drift =
// src.clock_drift + dst.clock_drift + dst.max_block_time`. Both client
// type values are accepted; the client created is a 07-tendermint
// client for either of them.
func (s *Supervisor) CreateClient(ctx context.Context, srcID, dstID, clientType string) (string, ibc.IbcEvent, error) {
	if clientType != "tendermint" && clientType != "aggrelite" {
		return "", nil, relayererrors.ErrIdentifier.Wrapf("unknown client type %q", clientType)
	}

	src, err := s.Chains.MustChain(srcID)
	if err != nil {
		return "", nil, err
	}
	dst, err := s.Chains.MustChain(dstID)
	if err != nil {
		return "", nil, err
	}

	unbondingPeriod, err := dst.QueryUnbondingPeriod(ctx)
	if err != nil {
		return "", nil, err
	}
	trustingPeriod := src.Config.TrustingPeriod
	if bound := (2 * unbondingPeriod) / 3; bound < trustingPeriod {
		trustingPeriod = bound
	}

	return handshake.CreateClient(ctx, src, dst, trustingPeriod, unbondingPeriod)
}

// CreateConnection is `connection create` (spec §6): runs the
// connection handshake state machine (C5) to completion.
func (s *Supervisor) CreateConnection(ctx context.Context, srcID, dstID, srcClient, dstClient string) (ibc.Connection, []ibc.IbcEvent, error) {
	src, err := s.Chains.MustChain(srcID)
	if err != nil {
		return ibc.Connection{}, nil, err
	}
	dst, err := s.Chains.MustChain(dstID)
	if err != nil {
		return ibc.Connection{}, nil, err
	}

	conn := ibc.Connection{
		SideA: ibc.ConnectionSide{Chain: srcID, ClientID: srcClient},
		SideB: ibc.ConnectionSide{Chain: dstID, ClientID: dstClient},
	}
	driver := &handshake.ConnectionDriver{A: src, B: dst, Conn: conn}

	events, err := handshake.Run(ctx, driver)
	return driver.Conn, events, err
}

// ChannelParams are the per-side flags of `channel create` (spec §6).
type ChannelParams struct {
	ChainID      string
	ClientID     string
	ConnectionID string
	PortID       string
	Version      string
}

// CreateChannel is `channel create` (spec §6): runs the channel
// handshake state machine (C5) to completion and, on success,
// registers the resulting channel (and its flip) in the channel pool.
func (s *Supervisor) CreateChannel(ctx context.Context, source, target ChannelParams) (ibc.Channel, []ibc.IbcEvent, error) {
	src, err := s.Chains.MustChain(source.ChainID)
	if err != nil {
		return ibc.Channel{}, nil, err
	}
	dst, err := s.Chains.MustChain(target.ChainID)
	if err != nil {
		return ibc.Channel{}, nil, err
	}

	srcVersion, dstVersion := source.Version, target.Version
	ch := ibc.Channel{
		Ordering: channeltypes.UNORDERED,
		SideA: ibc.ChannelSide{
			Chain:        source.ChainID,
			ClientID:     source.ClientID,
			ConnectionID: source.ConnectionID,
			PortID:       source.PortID,
			Version:      &srcVersion,
		},
		SideB: ibc.ChannelSide{
			Chain:        target.ChainID,
			ClientID:     target.ClientID,
			ConnectionID: target.ConnectionID,
			PortID:       target.PortID,
			Version:      &dstVersion,
		},
		ConnectionDelay: 100 * time.Second,
	}
	driver := &handshake.ChannelDriver{A: src, B: dst, Chan: ch}

	events, err := handshake.Run(ctx, driver)
	if err != nil {
		return driver.Chan, events, err
	}

	if err := s.Channels.AddChannelWithFlip(driver.Chan); err != nil {
		return driver.Chan, events, err
	}
	return driver.Chan, events, nil
}

// Start is `aggregator start --mode <mosaicxc|cosmosibc> --gtype
// <0|1|2>` (spec §6, §4.8): it starts every registered chain's
// pipeline (C3 + C4 + C7) in the requested mode.
func (s *Supervisor) Start(ctx context.Context, mode string, gtype dispatch.GroupingType) error {
	s.mu.Lock()
	managers := make([]*ChainManager, 0, len(s.managers))
	for _, cm := range s.managers {
		managers = append(managers, cm)
	}
	s.mu.Unlock()

	for _, cm := range managers {
		if err := cm.Start(ctx, mode, gtype); err != nil {
			return relayererrors.ErrTransport.Wrapf("starting pipeline for %s: %v", cm.ChainID(), err)
		}
	}
	return nil
}

// Stop tears down every running chain manager's pipeline.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cm := range s.managers {
		cm.Stop()
	}
}

// QueryCompletedTxsCountsAndTotalGas is `aggregator querytotalgas`
// (spec §6, §4.8).
func (s *Supervisor) QueryCompletedTxsCountsAndTotalGas() (int, uint64) {
	return s.Completed.CountAndTotalGas()
}
