package config

import (
	"encoding/base64"
	"encoding/json"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
)

// EncodedPubKey is the ICS-24 encoded public key JSON embedded in a
// key file: `{ "@type": ..., "key": base64 }`.
type EncodedPubKey struct {
	Type string `json:"@type"`
	Key  []byte `json:"key"`
}

// UnmarshalJSON decodes the base64 "key" field, matching the wire
// shape of a Cosmos SDK Any-wrapped public key rendered as JSON.
func (e *EncodedPubKey) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type string `json:"@type"`
		Key  string `json:"key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	key, err := base64.StdEncoding.DecodeString(raw.Key)
	if err != nil {
		return err
	}
	e.Type = raw.Type
	e.Key = key
	return nil
}

// KeyFile is the on-disk signer description of spec §6.
type KeyFile struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Address  string `toml:"address"`
	PubKey   string `toml:"pubkey"` // raw JSON text of EncodedPubKey
	Mnemonic string `toml:"mnemonic"`
}

// DecodedPubKey parses the PubKey field's embedded JSON.
func (k KeyFile) DecodedPubKey() (EncodedPubKey, error) {
	var pk EncodedPubKey
	if err := json.Unmarshal([]byte(k.PubKey), &pk); err != nil {
		return EncodedPubKey{}, relayererrors.ErrDecode.Wrapf("pubkey json: %v", err)
	}
	return pk, nil
}

// LoadKeyFile reads a key file from path. It does not validate the
// mnemonic/pubkey/address cross-checks — see pkg/keyring for that,
// since it requires deriving a key which is this package's caller's
// concern, not a pure parsing concern.
func LoadKeyFile(path string) (KeyFile, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return KeyFile{}, relayererrors.ErrConfig.Wrapf("reading %s: %v", path, err)
	}
	var kf KeyFile
	if err := toml.Unmarshal(bz, &kf); err != nil {
		return KeyFile{}, relayererrors.ErrConfig.Wrapf("parsing %s: %v", path, err)
	}
	return kf, nil
}
