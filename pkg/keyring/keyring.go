// Package keyring wraps the Cosmos SDK in-memory keyring with the
// relayer's key-file validation rule: the secp256k1 public key
// derived from a key file's mnemonic via BIP-32 at hd_path must
// byte-equal the trailing portion of the key file's declared pubkey,
// and its bech32 address must decode cleanly.
package keyring

import (
	"bytes"
	"fmt"

	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/crypto/hd"
	sdkkeyring "github.com/cosmos/cosmos-sdk/crypto/keyring"
	"github.com/cosmos/cosmos-sdk/std"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/google/uuid"

	"github.com/mosaicxc/relayer/pkg/config"
	"github.com/mosaicxc/relayer/pkg/relayererrors"
)

// Signer is a chain's signing identity: the keyring record plus its
// resolved address and public key, ready to sign SignDocs.
type Signer struct {
	Name    string
	Address sdk.AccAddress
	keyring sdkkeyring.Keyring
}

func newCodec() codec.Codec {
	ir := codectypes.NewInterfaceRegistry()
	std.RegisterInterfaces(ir)
	return codec.NewProtoCodec(ir)
}

// LoadSigner imports kf's mnemonic into a fresh in-memory keyring at
// hdPath, validates it against the key file's declared pubkey and
// address, and returns the resulting Signer.
func LoadSigner(kf config.KeyFile, hdPath string) (*Signer, error) {
	cdc := newCodec()
	kr := sdkkeyring.NewInMemory(cdc)

	record, err := kr.NewAccount(
		uuid.New().String(),
		kf.Mnemonic,
		"",
		hdPath,
		hd.Secp256k1,
	)
	if err != nil {
		return nil, relayererrors.ErrKeyMaterial.Wrapf("deriving key from mnemonic: %v", err)
	}

	derivedPubKey, err := record.GetPubKey()
	if err != nil {
		return nil, relayererrors.ErrKeyMaterial.Wrapf("reading derived pubkey: %v", err)
	}

	declared, err := kf.DecodedPubKey()
	if err != nil {
		return nil, err
	}
	// The declared key's raw bytes carry a length-prefixed encoding; the
	// derived key's raw bytes must appear as its trailing portion.
	if !bytes.HasSuffix(declared.Key, derivedPubKey.Bytes()) {
		return nil, relayererrors.ErrKeyMaterial.Wrapf(
			"derived pubkey does not match key file pubkey for %q", kf.Name)
	}

	derivedAddr, err := record.GetAddress()
	if err != nil {
		return nil, relayererrors.ErrKeyMaterial.Wrapf("reading derived address: %v", err)
	}

	declaredAddrBytes, err := DecodeBech32(kf.Address)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(derivedAddr, declaredAddrBytes) {
		return nil, relayererrors.ErrKeyMaterial.Wrapf(
			"derived address %s does not match key file address %s", derivedAddr, kf.Address)
	}

	return &Signer{
		Name:    kf.Name,
		Address: derivedAddr,
		keyring: kr,
	}, nil
}

// Keyring exposes the underlying SDK keyring for tx signing.
func (s *Signer) Keyring() sdkkeyring.Keyring {
	return s.keyring
}

// DecodeBech32 decodes a bech32 address into its raw bytes, without
// asserting a particular human-readable prefix (the relayer talks to
// chains with different address prefixes).
func DecodeBech32(addr string) ([]byte, error) {
	_, bz, err := bech32.DecodeAndConvert(addr)
	if err != nil {
		return nil, relayererrors.ErrDecode.Wrapf("bech32 decode %q: %v", addr, err)
	}
	return bz, nil
}

// EncodeBech32 encodes raw address bytes under hrp.
func EncodeBech32(hrp string, bz []byte) (string, error) {
	addr, err := bech32.ConvertAndEncode(hrp, bz)
	if err != nil {
		return "", relayererrors.ErrDecode.Wrapf("bech32 encode under %q: %v", hrp, err)
	}
	return addr, nil
}

// MustBech32 is EncodeBech32 without the error return, for call sites
// that already know hrp/bz are well formed (e.g. an address just
// decoded from the keyring).
func MustBech32(hrp string, bz []byte) string {
	addr, err := EncodeBech32(hrp, bz)
	if err != nil {
		panic(fmt.Sprintf("keyring: invalid address material: %v", err))
	}
	return addr
}
