package keyring

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	bip39 "github.com/cosmos/go-bip39"
	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/pkg/config"
)

const testMnemonic = "system voyage notice mother enrich glow person blur winter clog equip dignity will bicycle stumble purse shock casino wet fan neglect essay vote school"

const testHDPath = "m/44'/118'/0'/0/0"

// buildKeyFile derives the expected pubkey/address for mnemonic at
// hdPath independently of LoadSigner, so the test does not depend on
// a hardcoded key-file fixture going stale.
func buildKeyFile(t *testing.T, mnemonic, hdPath string) config.KeyFile {
	t.Helper()

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	require.NoError(t, err)

	masterPriv, chainCode := hd.ComputeMastersFromSeed(seed)
	privBytes, err := hd.DerivePrivateKeyForPath(masterPriv, chainCode, hdPath[2:])
	require.NoError(t, err)

	privKey := hd.Secp256k1.Generate()(privBytes)
	pubKey := privKey.PubKey()

	pubKeyJSON := fmt.Sprintf(
		`{"@type":"/cosmos.crypto.secp256k1.PubKey","key":%q}`,
		base64.StdEncoding.EncodeToString(pubKey.Bytes()),
	)
	addr, err := EncodeBech32("cosmos", pubKey.Address())
	require.NoError(t, err)

	return config.KeyFile{
		Name:     "test-signer",
		Type:     "local",
		Address:  addr,
		PubKey:   pubKeyJSON,
		Mnemonic: mnemonic,
	}
}

func TestLoadSignerAcceptsConsistentKeyFile(t *testing.T) {
	t.Parallel()

	kf := buildKeyFile(t, testMnemonic, testHDPath)

	signer, err := LoadSigner(kf, testHDPath)
	require.NoError(t, err)
	require.NotEmpty(t, signer.Address)

	addr, err := EncodeBech32("cosmos", signer.Address)
	require.NoError(t, err)
	require.Equal(t, kf.Address, addr)
}

func TestLoadSignerRejectsMismatchedAddress(t *testing.T) {
	t.Parallel()

	kf := buildKeyFile(t, testMnemonic, testHDPath)
	kf.Address = "cosmos1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqnrql8a" // well-formed but wrong

	_, err := LoadSigner(kf, testHDPath)
	require.Error(t, err)
}

func TestBech32RoundTrip(t *testing.T) {
	t.Parallel()

	bz := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	addr, err := EncodeBech32("cosmos", bz)
	require.NoError(t, err)

	decoded, err := DecodeBech32(addr)
	require.NoError(t, err)
	require.Equal(t, bz, decoded)
}
