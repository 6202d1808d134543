package ibc

import (
	"fmt"
	"strings"

	host "github.com/cosmos/ibc-go/v10/modules/core/24-host"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
)

// Client type prefixes recognized by this relayer (spec §3).
const (
	ClientTypeTendermint = "07-tendermint"
	ClientTypeAggrelite  = "05-aggrelite"
)

// ValidateChainID checks that a chain id is non-empty and contains no
// '/'. The "<name>-<revision>" shape itself is not checked.
func ValidateChainID(chainID string) error {
	if chainID == "" {
		return relayererrors.ErrIdentifier.Wrap("chain id must not be empty")
	}
	if strings.Contains(chainID, "/") {
		return relayererrors.ErrIdentifier.Wrapf("chain id %q must not contain '/'", chainID)
	}
	return nil
}

// ValidateClientID delegates syntactic validation (length, allowed
// characters, no '/') to ibc-go's own host identifier validator, then
// checks the client-type prefix is one this relayer understands.
func ValidateClientID(id string) error {
	if err := host.ClientIdentifierValidator(id); err != nil {
		return relayererrors.ErrIdentifier.Wrapf("client id %q: %v", id, err)
	}
	if ClientType(id) == "" {
		return relayererrors.ErrIdentifier.Wrapf(
			"client id %q has unrecognized client-type prefix (want %q or %q)",
			id, ClientTypeTendermint, ClientTypeAggrelite)
	}
	return nil
}

// ClientType returns the client-type prefix of a client id (e.g.
// "07-tendermint" for "07-tendermint-3"), or "" if unrecognized.
func ClientType(clientID string) string {
	switch {
	case strings.HasPrefix(clientID, ClientTypeTendermint+"-"):
		return ClientTypeTendermint
	case strings.HasPrefix(clientID, ClientTypeAggrelite+"-"):
		return ClientTypeAggrelite
	default:
		return ""
	}
}

// ValidateConnectionID validates a "connection-<n>" identifier.
func ValidateConnectionID(id string) error {
	if err := host.ConnectionIdentifierValidator(id); err != nil {
		return relayererrors.ErrIdentifier.Wrapf("connection id %q: %v", id, err)
	}
	return nil
}

// ValidateChannelID validates a "channel-<n>" identifier.
func ValidateChannelID(id string) error {
	if err := host.ChannelIdentifierValidator(id); err != nil {
		return relayererrors.ErrIdentifier.Wrapf("channel id %q: %v", id, err)
	}
	return nil
}

// ValidatePortID validates a port identifier.
func ValidatePortID(id string) error {
	if err := host.PortIdentifierValidator(id); err != nil {
		return relayererrors.ErrIdentifier.Wrapf("port id %q: %v", id, err)
	}
	return nil
}

// FormatHeight renders a Height as "<rev>-<h>", the inverse of
// ParseHeight.
func FormatHeight(h Height) string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}
