package event

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

func heightAt(n uint64) ibc.Height {
	h, err := ibc.NewHeight(1, n)
	if err != nil {
		panic(err)
	}
	return h
}

func TestPoolPushAndDrain(t *testing.T) {
	p := NewPool()
	require.Equal(t, 0, p.Len())

	p.PushEvents([]ibc.IbcEventWithHeight{
		{Event: ibc.NewBlockEvent{}, Height: heightAt(1)},
		{Event: ibc.NewBlockEvent{}, Height: heightAt(2)},
	})
	require.Equal(t, 2, p.Len())

	drained := p.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, 0, p.Len())
	require.Nil(t, p.Drain())
}

func TestPoolReadLatestPopsMostRecent(t *testing.T) {
	p := NewPool()
	p.PushEvents([]ibc.IbcEventWithHeight{
		{Event: ibc.NewBlockEvent{}, Height: heightAt(1)},
		{Event: ibc.CreateClientEvent{ClientID: "07-tendermint-0"}, Height: heightAt(2)},
	})

	latest, ok := p.ReadLatest()
	require.True(t, ok)
	require.Equal(t, heightAt(2), latest.Height)
	require.Equal(t, 1, p.Len())

	_, ok = p.ReadLatest()
	require.True(t, ok)
	require.Equal(t, 0, p.Len())

	_, ok = p.ReadLatest()
	require.False(t, ok)
}
