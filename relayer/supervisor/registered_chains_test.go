package supervisor

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/chain"
)

func TestRegisteredChainsAddAndLookup(t *testing.T) {
	r := NewRegisteredChains()

	a := &chain.Handle{ChainID: "chain-a"}
	b := &chain.Handle{ChainID: "chain-b"}
	r.Add(a)
	r.Add(b)

	got, ok := r.Chain("chain-a")
	require.True(t, ok)
	require.Same(t, a, got)

	_, ok = r.Chain("chain-missing")
	require.False(t, ok)
}

func TestRegisteredChainsMustChainWrapsLookupMiss(t *testing.T) {
	r := NewRegisteredChains()
	r.Add(&chain.Handle{ChainID: "chain-a"})

	h, err := r.MustChain("chain-a")
	require.NoError(t, err)
	require.Equal(t, "chain-a", h.ChainID)

	_, err = r.MustChain("chain-missing")
	require.Error(t, err)
}

func TestRegisteredChainsAllChainIDs(t *testing.T) {
	r := NewRegisteredChains()
	r.Add(&chain.Handle{ChainID: "chain-a"})
	r.Add(&chain.Handle{ChainID: "chain-b"})

	ids := r.AllChainIDs()
	sort.Strings(ids)
	require.Equal(t, []string{"chain-a", "chain-b"}, ids)
}

func TestRegisteredChainsAddOverwritesSameID(t *testing.T) {
	r := NewRegisteredChains()
	first := &chain.Handle{ChainID: "chain-a"}
	second := &chain.Handle{ChainID: "chain-a"}

	r.Add(first)
	r.Add(second)

	got, ok := r.Chain("chain-a")
	require.True(t, ok)
	require.Same(t, second, got)
	require.Len(t, r.AllChainIDs(), 1)
}
