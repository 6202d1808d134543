package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mosaicxc/relayer/relayer/ibc"
)

func TestCompletedLogCountAndTotalGas(t *testing.T) {
	l := NewCompletedLog()

	count, gas := l.CountAndTotalGas()
	require.Equal(t, 0, count)
	require.Equal(t, uint64(0), gas)

	l.Append(CompletedTx{GasUsed: 100})
	l.Append(CompletedTx{GasUsed: 250})

	count, gas = l.CountAndTotalGas()
	require.Equal(t, 2, count)
	require.Equal(t, uint64(350), gas)
}

func TestCompletedLogAppendIsConcurrencySafe(t *testing.T) {
	l := NewCompletedLog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(CompletedTx{GasUsed: 1, Events: []ibc.IbcEventWithHeight{}})
		}()
	}
	wg.Wait()

	count, gas := l.CountAndTotalGas()
	require.Equal(t, 50, count)
	require.Equal(t, uint64(50), gas)
}
