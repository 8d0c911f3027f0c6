package cmd

import (
	"testing"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCycle(t *testing.T) {
	cycle, err := parseCycle("usdt,btc,eth,usdt", ",")
	require.NoError(t, err)
	assert.Equal(t, "USDT->BTC->ETH->USDT", cycle.String())

	cycle, err = parseCycle("BTC-BNB-BTC", "-")
	require.NoError(t, err)
	assert.Len(t, cycle, 2)

	_, err = parseCycle("USDT,BTC,ETH", ",")
	assert.ErrorIs(t, err, arbitrage.ErrOpenCycle)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["validate-cycle"])
	assert.True(t, names["watchlist"])
}
