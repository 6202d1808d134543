package ibc

import (
	"time"

	ibctmtypes "github.com/cosmos/ibc-go/v10/modules/light-clients/07-tendermint"
)

// ClientState is the capability set shared by the Tendermint and
// Aggrelite client-state variants (spec §3 "Client state", §9 design
// note: "a tagged union at the data-model boundary; the operational
// interface ... is a capability set realised by both variants — no
// dynamic dispatch required except where the variant is not known
// statically"). Callers branch on ClientKind() where the variant
// decides the wire shape (relayer/chain's AdjustHeaders picks the
// update-client header type that way); elsewhere they program against
// this interface.
type ClientState interface {
	ChainID() string
	ClientKind() string // one of ClientTypeTendermint, ClientTypeAggrelite
	LatestHeight() Height
	TrustingPeriod() time.Duration
	UnbondingPeriod() time.Duration
	MaxClockDrift() time.Duration
	FrozenHeight() (Height, bool)
	IsFrozen() bool
	// Expired reports whether elapsed (time since the trusted
	// consensus state) exceeds the trusting period (spec §3, Testable
	// Property / S6 "Expired client").
	Expired(elapsed time.Duration) bool
}

// ConsensusState is the capability set for a light client's
// per-height consensus snapshot.
type ConsensusState interface {
	Timestamp() time.Time
	RootHash() []byte
	NextValidatorsHash() []byte
}

// TendermintClientState adapts ibc-go's 07-tendermint ClientState to
// the ClientState capability set.
type TendermintClientState struct {
	Inner *ibctmtypes.ClientState
}

var _ ClientState = TendermintClientState{}

func (t TendermintClientState) ChainID() string       { return t.Inner.ChainId }
func (t TendermintClientState) ClientKind() string    { return ClientTypeTendermint }
func (t TendermintClientState) LatestHeight() Height  { return t.Inner.LatestHeight }
func (t TendermintClientState) TrustingPeriod() time.Duration {
	return t.Inner.TrustingPeriod
}
func (t TendermintClientState) UnbondingPeriod() time.Duration {
	return t.Inner.UnbondingPeriod
}
func (t TendermintClientState) MaxClockDrift() time.Duration {
	return t.Inner.MaxClockDrift
}
func (t TendermintClientState) FrozenHeight() (Height, bool) {
	if t.Inner.FrozenHeight.IsZero() {
		return Height{}, false
	}
	return t.Inner.FrozenHeight, true
}
func (t TendermintClientState) IsFrozen() bool {
	_, frozen := t.FrozenHeight()
	return frozen
}
func (t TendermintClientState) Expired(elapsed time.Duration) bool {
	return elapsed > t.Inner.TrustingPeriod
}

// TendermintConsensusState adapts ibc-go's 07-tendermint ConsensusState.
type TendermintConsensusState struct {
	Inner *ibctmtypes.ConsensusState
}

var _ ConsensusState = TendermintConsensusState{}

func (c TendermintConsensusState) Timestamp() time.Time { return c.Inner.Timestamp }
func (c TendermintConsensusState) RootHash() []byte     { return c.Inner.Root.Hash }
func (c TendermintConsensusState) NextValidatorsHash() []byte {
	return c.Inner.NextValidatorsHash
}

// AggreliteClientState is the relayer's lightweight second
// light-client variant (spec §1 "targets Tendermint and an
// 'Aggrelite' light-client variant only"; grounded on
// rust:types/src/light_clients/aggrelite/client_state.rs, which
// mirrors the Tendermint client state's fields field-for-field). It
// carries its own struct (rather than wrapping ibctmtypes) because
// ibc-go has no built-in Aggrelite client; this is the one variant
// the relayer must construct and serialize itself.
type AggreliteClientState struct {
	ChainIDValue       string
	TrustNumerator     uint64
	TrustDenominator   uint64
	TrustingPeriodV    time.Duration
	UnbondingPeriodV   time.Duration
	MaxClockDriftV     time.Duration
	LatestHeightV      Height
	FrozenHeightV      *Height
	UpgradePath        []string
}

var _ ClientState = AggreliteClientState{}

func (a AggreliteClientState) ChainID() string              { return a.ChainIDValue }
func (a AggreliteClientState) ClientKind() string            { return ClientTypeAggrelite }
func (a AggreliteClientState) LatestHeight() Height          { return a.LatestHeightV }
func (a AggreliteClientState) TrustingPeriod() time.Duration { return a.TrustingPeriodV }
func (a AggreliteClientState) UnbondingPeriod() time.Duration { return a.UnbondingPeriodV }
func (a AggreliteClientState) MaxClockDrift() time.Duration  { return a.MaxClockDriftV }
func (a AggreliteClientState) FrozenHeight() (Height, bool) {
	if a.FrozenHeightV == nil {
		return Height{}, false
	}
	return *a.FrozenHeightV, true
}
func (a AggreliteClientState) IsFrozen() bool { return a.FrozenHeightV != nil }
func (a AggreliteClientState) Expired(elapsed time.Duration) bool {
	return elapsed > a.TrustingPeriodV
}

// AggreliteConsensusState mirrors ibctmtypes.ConsensusState's three
// fields (timestamp, app-hash root, next-validators-hash).
type AggreliteConsensusState struct {
	TimestampV           time.Time
	RootHashV            []byte
	NextValidatorsHashV []byte
}

var _ ConsensusState = AggreliteConsensusState{}

func (a AggreliteConsensusState) Timestamp() time.Time       { return a.TimestampV }
func (a AggreliteConsensusState) RootHash() []byte           { return a.RootHashV }
func (a AggreliteConsensusState) NextValidatorsHash() []byte { return a.NextValidatorsHashV }
