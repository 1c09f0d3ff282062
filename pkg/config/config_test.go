package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/hunter")
	t.Setenv("ETHERSCAN_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ChainEthereum, cfg.Chain)
	assert.Equal(t, 5, cfg.ExplorerRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.ExplorerDelay)
	assert.Equal(t, 20*time.Second, cfg.ExplorerTimeout)
	assert.Equal(t, filepath.Join("/tmp/hunter", "wallets"), cfg.WalletsDir)
	assert.Equal(t, filepath.Join("/tmp/hunter", "tracking", "tracking.txt"), cfg.TrackingFile)
	assert.Equal(t, 5, cfg.TrackMinBuyers)
	assert.Equal(t, "https://api.etherscan.io/api", cfg.GetExplorerURL(cfg.Chain))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHAIN", "BSC")
	t.Setenv("BSCSCAN_API_KEY", "bsc-key")
	t.Setenv("EXPLORER_RETRIES", "3")
	t.Setenv("EXPLORER_DELAY", "1s")
	t.Setenv("EXPLORER_TIMEOUT", "garbage")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ChainBSC, cfg.Chain)
	assert.Equal(t, "bsc-key", cfg.GetExplorerKey(cfg.Chain))
	assert.Equal(t, "https://api.bscscan.com/api", cfg.GetExplorerURL(cfg.Chain))
	assert.Equal(t, 3, cfg.ExplorerRetries)
	assert.Equal(t, time.Second, cfg.ExplorerDelay)
	assert.Equal(t, 20*time.Second, cfg.ExplorerTimeout, "unparsable duration falls back")
}

func TestValidate(t *testing.T) {
	cfg := &Config{Chain: ChainBase, ExplorerKeys: map[Chain]string{}, ExplorerRetries: 5}
	assert.ErrorContains(t, cfg.Validate(), "no explorer API key")

	cfg.ExplorerKeys[ChainBase] = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Chain = "solana"
	assert.ErrorContains(t, cfg.Validate(), "unknown chain")

	cfg.Chain = ChainBase
	cfg.ExplorerRetries = 0
	assert.Error(t, cfg.Validate())
}

func TestGetExplorerURL_Override(t *testing.T) {
	cfg := &Config{ExplorerURL: "http://localhost:9999/api"}
	assert.Equal(t, "http://localhost:9999/api", cfg.GetExplorerURL(ChainBSC))
}
