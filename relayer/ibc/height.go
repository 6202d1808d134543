// Package ibc is the relayer's IBC data model: heights, identifiers,
// packets, client/consensus states and the typed event union of
// spec.md §3. Where ibc-go v10 already defines the exact wire shape
// (Height, Packet, ClientState, ConnectionEnd, Channel), we reuse its
// types directly rather than re-encode them, mirroring how
// integration-tests/ibc/ibc_v2_test.go consumes them.
package ibc

import (
	"fmt"
	"strconv"
	"strings"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
)

// Height is the relayer's (revision_number, revision_height) pair.
// ibc-go's clienttypes.Height already has this exact shape (it embeds
// proto fields RevisionNumber/RevisionHeight and implements the
// lexicographic total order via Compare/LT/GT/EQ), so we alias it
// instead of redefining an equivalent struct.
type Height = clienttypes.Height

// NewHeight constructs a Height, validating revisionHeight >= 1 per
// spec §3.
func NewHeight(revisionNumber, revisionHeight uint64) (Height, error) {
	if revisionHeight < 1 {
		return Height{}, fmt.Errorf("revision_height must be >= 1, got %d", revisionHeight)
	}
	return clienttypes.NewHeight(revisionNumber, revisionHeight), nil
}

// ParseChainRevision extracts the revision number from a chain id of
// the form "<name>-<revision>"; a chain id without a trailing "-<n>"
// has revision 0.
func ParseChainRevision(chainID string) uint64 {
	idx := strings.LastIndex(chainID, "-")
	if idx < 0 || idx == len(chainID)-1 {
		return 0
	}
	rev, err := strconv.ParseUint(chainID[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return rev
}

// ParseHeight parses "<rev>-<h>" into a Height.
func ParseHeight(s string) (Height, error) {
	h, err := clienttypes.ParseHeight(s)
	if err != nil {
		return Height{}, fmt.Errorf("parsing height %q: %w", s, err)
	}
	return h, nil
}

// TimeoutHeight mirrors spec §3's `TimeoutHeight ∈ {Never, At(Height)}`.
// ibc-go represents "Never" as the zero Height, which is exactly the
// semantics clienttypes.Height.IsZero() already implements.
type TimeoutHeight = clienttypes.Height
