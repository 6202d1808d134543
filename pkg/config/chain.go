// Package config loads and validates the relayer's TOML chain-config
// and key files (spec §6).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
)

// GasPrice is the `{amount, denom}` pair used to price gas on a chain.
type GasPrice struct {
	Amount float64 `toml:"price"`
	Denom  string  `toml:"denom"`
}

// TrustThreshold is the `n/d` light-client trust-level fraction.
type TrustThreshold struct {
	Numerator   uint64 `toml:"numerator"`
	Denominator uint64 `toml:"denominator"`
}

// ChainConfig is the on-disk description of a chain the relayer can
// talk to; see spec §3 "Chain descriptor" and §6.
type ChainConfig struct {
	ChainID           string         `toml:"chain_id"`
	GRPCAddr          string         `toml:"grpc_addr"`
	TendermintRPCAddr string         `toml:"tendermint_rpc_addr"`
	KeyPath           string         `toml:"chain_a_key_path"`
	HDPath            string         `toml:"hd_path"`
	DefaultGas        uint64         `toml:"default_gas"`
	MaxGas            uint64         `toml:"max_gas"`
	GasMultiplier     float64        `toml:"gas_multiplier"`
	FeeGranter        string         `toml:"fee_granter"`
	GasPrice          GasPrice       `toml:"gas_price"`
	MaxMsgNum         uint64         `toml:"max_msg_num"`
	MaxTxSize         uint64         `toml:"max_tx_size"`
	MemoPrefix        string         `toml:"memo_prefix"`
	TrustingPeriod    time.Duration  `toml:"trusting_period"`
	MaxBlockTime      time.Duration  `toml:"max_block_time"`
	ClockDrift        time.Duration  `toml:"clock_drift"`
	RPCTimeout        time.Duration  `toml:"rpc_timeout"`
	TrustedNode       bool           `toml:"trusted_node"`
	TrustThreshold    TrustThreshold `toml:"trust_threshold"`
}

// Validate checks the structural invariants of spec §3 that do not
// require network access: chain_id is set, trusting_period > 0,
// 0 < trust_threshold n <= d, and max_msg_num and max_tx_size are
// positive. Gas settings are not checked.
func (c ChainConfig) Validate() error {
	if c.ChainID == "" {
		return relayererrors.ErrConfig.Wrap("chain_id is required")
	}
	if c.TrustingPeriod <= 0 {
		return relayererrors.ErrConfig.Wrap("trusting_period must be > 0")
	}
	if c.TrustThreshold.Denominator == 0 || c.TrustThreshold.Numerator == 0 ||
		c.TrustThreshold.Numerator > c.TrustThreshold.Denominator {
		return relayererrors.ErrConfig.Wrap("trust_threshold must satisfy 0 < n <= d")
	}
	if c.MaxMsgNum <= 0 {
		return relayererrors.ErrConfig.Wrap("max_msg_num must be positive")
	}
	if c.MaxTxSize <= 0 {
		return relayererrors.ErrConfig.Wrap("max_tx_size must be positive")
	}
	return nil
}

// LoadChainConfig reads and validates a chain config TOML file at path.
func LoadChainConfig(path string) (ChainConfig, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return ChainConfig{}, relayererrors.ErrConfig.Wrapf("reading %s: %v", path, err)
	}

	var cfg ChainConfig
	if err := toml.Unmarshal(bz, &cfg); err != nil {
		return ChainConfig{}, relayererrors.ErrConfig.Wrapf("parsing %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return ChainConfig{}, fmt.Errorf("invalid chain config %s: %w", path, err)
	}

	return cfg, nil
}
