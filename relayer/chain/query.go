package chain

import (
	"context"
	"time"

	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	crypto "github.com/cometbft/cometbft/proto/tendermint/crypto"
	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v10/modules/core/23-commitment/types"
	host "github.com/cosmos/ibc-go/v10/modules/core/24-host"
	ibctmtypes "github.com/cosmos/ibc-go/v10/modules/light-clients/07-tendermint"
	gogoproto "github.com/cosmos/gogoproto/proto"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// QueryLatestHeight returns the chain's latest committed height (spec
// §4.1).
func (h *Handle) QueryLatestHeight(ctx context.Context) (ibc.Height, error) {
	status, err := h.rpc.Status(ctx)
	if err != nil {
		return ibc.Height{}, relayererrors.ErrRPCStatus.Wrapf("querying status on %s: %v", h.ChainID, err)
	}
	return ibc.NewHeight(ibc.ParseChainRevision(h.ChainID), uint64(status.SyncInfo.LatestBlockHeight))
}

// QueryBlock returns the block at height (0 for latest).
func (h *Handle) QueryBlock(ctx context.Context, height int64) (*coretypes.ResultBlock, error) {
	var hp *int64
	if height > 0 {
		hp = &height
	}
	block, err := h.rpc.Block(ctx, hp)
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying block %d on %s: %v", height, h.ChainID, err)
	}
	return block, nil
}

// QueryBlockResults returns the ABCI results for the block at height.
func (h *Handle) QueryBlockResults(ctx context.Context, height int64) (*coretypes.ResultBlockResults, error) {
	var hp *int64
	if height > 0 {
		hp = &height
	}
	res, err := h.rpc.BlockResults(ctx, hp)
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying block results %d on %s: %v", height, h.ChainID, err)
	}
	return res, nil
}

// QueryLightBlocks returns the signed header and validator sets needed
// to build an update-client header targeting height, plus the
// currently trusted height's validator set (spec §4.1's "light block"
// query; grounded on the teacher's updateTendermintClient helper in
// integration-tests/ibc/ibc_v2_test.go).
type LightBlockBundle struct {
	SignedHeader      *coretypes.ResultCommit
	Validators        *coretypes.ResultValidators
	TrustedValidators *coretypes.ResultValidators
}

func (h *Handle) QueryLightBlocks(ctx context.Context, targetHeight, trustedHeight int64) (*LightBlockBundle, error) {
	commit, err := h.rpc.Commit(ctx, &targetHeight)
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying commit %d on %s: %v", targetHeight, h.ChainID, err)
	}
	vals, err := h.rpc.Validators(ctx, &targetHeight, nil, nil)
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying validators %d on %s: %v", targetHeight, h.ChainID, err)
	}
	trustedVals, err := h.rpc.Validators(ctx, &trustedHeight, nil, nil)
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying trusted validators %d on %s: %v", trustedHeight, h.ChainID, err)
	}
	return &LightBlockBundle{SignedHeader: commit, Validators: vals, TrustedValidators: trustedVals}, nil
}

// QueryUnbondingPeriod fetches the chain's staking unbonding time,
// the "unbonding_period from staking params" input to client-create
// (spec §4.5 "Client create: one-shot").
func (h *Handle) QueryUnbondingPeriod(ctx context.Context) (time.Duration, error) {
	res, err := stakingtypes.NewQueryClient(h.grpcConn).Params(ctx, &stakingtypes.QueryParamsRequest{})
	if err != nil {
		return 0, relayererrors.ErrRPCStatus.Wrapf("querying staking params on %s: %v", h.ChainID, err)
	}
	return res.Params.UnbondingTime, nil
}

// QueryClientState fetches the client state for clientID over gRPC and
// decodes it as a Tendermint client state. Only the Tendermint type url
// is decoded; any other type url, an Aggrelite client state included,
// returns ErrDecode.
func (h *Handle) QueryClientState(ctx context.Context, clientID string) (ibc.ClientState, error) {
	res, err := clienttypes.NewQueryClient(h.grpcConn).ClientState(ctx, &clienttypes.QueryClientStateRequest{ClientId: clientID})
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying client state %s on %s: %v", clientID, h.ChainID, err)
	}
	if res.ClientState.TypeUrl != "/ibc.lightclients.tendermint.v1.ClientState" {
		return nil, relayererrors.ErrDecode.Wrapf("unsupported client state type %s for %s", res.ClientState.TypeUrl, clientID)
	}
	var cs ibctmtypes.ClientState
	if err := gogoproto.Unmarshal(res.ClientState.Value, &cs); err != nil {
		return nil, relayererrors.ErrDecode.Wrapf("decoding client state %s: %v", clientID, err)
	}
	return ibc.TendermintClientState{Inner: &cs}, nil
}

// QueryClientConsensusState fetches the consensus state at
// consensusHeight for clientID.
func (h *Handle) QueryClientConsensusState(ctx context.Context, clientID string, consensusHeight ibc.Height) (ibc.ConsensusState, error) {
	res, err := clienttypes.NewQueryClient(h.grpcConn).ConsensusState(ctx, &clienttypes.QueryConsensusStateRequest{
		ClientId:       clientID,
		RevisionNumber: consensusHeight.RevisionNumber,
		RevisionHeight: consensusHeight.RevisionHeight,
		LatestHeight:   false,
	})
	if err != nil {
		return nil, relayererrors.ErrRPCStatus.Wrapf("querying consensus state %s@%s on %s: %v", clientID, ibc.FormatHeight(consensusHeight), h.ChainID, err)
	}
	var cons ibctmtypes.ConsensusState
	if err := gogoproto.Unmarshal(res.ConsensusState.Value, &cons); err != nil {
		return nil, relayererrors.ErrDecode.Wrapf("decoding consensus state %s: %v", clientID, err)
	}
	return ibc.TendermintConsensusState{Inner: &cons}, nil
}

// QueryConnection fetches the connection end over gRPC.
func (h *Handle) QueryConnection(ctx context.Context, connectionID string) (ibc.ConnectionEnd, error) {
	res, err := connectiontypes.NewQueryClient(h.grpcConn).Connection(ctx, &connectiontypes.QueryConnectionRequest{ConnectionId: connectionID})
	if err != nil {
		return ibc.ConnectionEnd{}, relayererrors.ErrRPCStatus.Wrapf("querying connection %s on %s: %v", connectionID, h.ChainID, err)
	}
	return *res.Connection, nil
}

// QueryChannel fetches the channel end over gRPC.
func (h *Handle) QueryChannel(ctx context.Context, portID, channelID string) (ibc.ChannelEnd, error) {
	res, err := channeltypes.NewQueryClient(h.grpcConn).Channel(ctx, &channeltypes.QueryChannelRequest{PortId: portID, ChannelId: channelID})
	if err != nil {
		return ibc.ChannelEnd{}, relayererrors.ErrRPCStatus.Wrapf("querying channel %s/%s on %s: %v", portID, channelID, h.ChainID, err)
	}
	return *res.Channel, nil
}

// BuildConnectionProofsAndClientState queries the connection end, its
// client state, and Merkle proofs for both at height, the bundle a
// connection handshake message needs to advance (spec §4.5).
type ConnectionProofBundle struct {
	Connection      ibc.ConnectionEnd
	ClientState     ibc.ClientState
	ConnectionProof []byte
	ClientProof     []byte
	ProofHeight     ibc.Height
}

func (h *Handle) BuildConnectionProofsAndClientState(ctx context.Context, connectionID, clientID string, queryHeight int64) (*ConnectionProofBundle, error) {
	conn, err := h.QueryConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	clientState, err := h.QueryClientState(ctx, clientID)
	if err != nil {
		return nil, err
	}

	_, connProof, proofHeight, err := h.abciQuery(ctx, []byte(host.ConnectionPath(connectionID)), queryHeight, true)
	if err != nil {
		return nil, err
	}
	_, clientProof, _, err := h.abciQuery(ctx, []byte(host.FullClientStatePath(clientID)), queryHeight, true)
	if err != nil {
		return nil, err
	}

	return &ConnectionProofBundle{
		Connection:      conn,
		ClientState:     clientState,
		ConnectionProof: connProof,
		ClientProof:     clientProof,
		ProofHeight:     proofHeight,
	}, nil
}

// BuildChannelProofs queries the channel end and its Merkle proof at
// height (spec §4.5).
func (h *Handle) BuildChannelProofs(ctx context.Context, portID, channelID string, queryHeight int64) (ibc.ChannelEnd, []byte, ibc.Height, error) {
	ch, err := h.QueryChannel(ctx, portID, channelID)
	if err != nil {
		return ibc.ChannelEnd{}, nil, ibc.Height{}, err
	}
	_, proof, proofHeight, err := h.abciQuery(ctx, []byte(host.ChannelPath(portID, channelID)), queryHeight, true)
	if err != nil {
		return ibc.ChannelEnd{}, nil, ibc.Height{}, err
	}
	return ch, proof, proofHeight, nil
}

// QueryPacketsMerkleProofInfos builds the MerkleProofInfo for each
// packet commitment (spec §3 "MerkleProofInfo"; this is the source
// material the clustering engine (C6) groups on).
func (h *Handle) QueryPacketsMerkleProofInfos(ctx context.Context, portID, channelID string, sequences []uint64, queryHeight int64) ([]ibc.MerkleProofInfo, error) {
	infos := make([]ibc.MerkleProofInfo, 0, len(sequences))
	for _, seq := range sequences {
		key := host.PacketCommitmentPath(portID, channelID, seq)
		value, proofBz, _, err := h.abciQuery(ctx, []byte(key), queryHeight, true)
		if err != nil {
			return nil, err
		}
		if len(value) == 0 {
			continue
		}
		var merkleProof commitmenttypes.MerkleProof
		if err := gogoproto.Unmarshal(proofBz, &merkleProof); err != nil {
			return nil, relayererrors.ErrDecode.Wrapf("decoding merkle proof for packet %d: %v", seq, err)
		}
		info := ibc.MerkleProofInfo{LeafKey: []byte(key), LeafValue: value}
		for _, p := range merkleProof.Proofs {
			if exist := p.GetExist(); exist != nil {
				if info.LeafOp == nil {
					info.LeafOp = exist.Leaf
				} else {
					info.FullPath = append(info.FullPath, exist.Path...)
				}
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// protoMarshalProofOps re-encodes Tendermint ProofOps as an ICS23
// MerkleProof, the wire format IBC handshake/packet messages expect
// (mirrors integration-tests/ibc/ibc_v2_test.go's
// commitmenttypes.ConvertProofs usage).
func protoMarshalProofOps(proofOps *crypto.ProofOps) ([]byte, error) {
	merkleProof, err := commitmenttypes.ConvertProofs(proofOps)
	if err != nil {
		return nil, relayererrors.ErrDecode.Wrapf("converting proof ops: %v", err)
	}
	bz, err := gogoproto.Marshal(&merkleProof)
	if err != nil {
		return nil, relayererrors.ErrDecode.Wrapf("marshaling merkle proof: %v", err)
	}
	return bz, nil
}
