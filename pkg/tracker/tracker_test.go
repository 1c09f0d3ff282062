package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-hunter/pkg/config"
	"github.com/wallet-hunter/pkg/explorer"
	"github.com/wallet-hunter/pkg/wallets"
)

type history struct {
	value []explorer.Transaction
	token []explorer.TokenTransfer
	fail  bool
}

type fakeSource struct {
	block     uint64
	blockErr  error
	wallets   map[string]history
	gotSince  int64
	fromBlock []uint64
}

func (f *fakeSource) ResolveBlock(_ context.Context, q explorer.BlockQuery) (uint64, error) {
	if q.Timestamp != nil {
		f.gotSince = *q.Timestamp
	}
	return f.block, f.blockErr
}

func (f *fakeSource) WalletTransactions(_ context.Context, w string, from uint64) ([]explorer.Transaction, error) {
	f.fromBlock = append(f.fromBlock, from)
	h := f.wallets[w]
	if h.fail {
		return nil, explorer.ErrRetriesExhausted
	}
	return h.value, nil
}

func (f *fakeSource) WalletTokenTransfers(_ context.Context, w string, from uint64) ([]explorer.TokenTransfer, error) {
	return f.wallets[w].token, nil
}

func addr(n int) string { return fmt.Sprintf("0x%040x", n) }

func newTracker(t *testing.T, src Source, lines []string) (*Tracker, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		TrackingFile:       filepath.Join(root, "tracking", "tracking.txt"),
		TrackingResultsDir: filepath.Join(root, "tracking_results"),
		TrackMinBuyers:     5,
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.TrackingFile), 0o755))
	require.NoError(t, os.WriteFile(cfg.TrackingFile, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	tr := New(cfg, src)
	tr.now = func() time.Time { return time.Date(2022, 5, 23, 9, 0, 0, 0, time.UTC) }
	return tr, cfg.TrackingResultsDir
}

// buys makes a history where the wallet bought each token in its own
// value-bearing transaction.
func buys(wallet int, tokens ...string) history {
	var h history
	for i, tok := range tokens {
		hash := fmt.Sprintf("0x%d-%d", wallet, i)
		h.value = append(h.value, explorer.Transaction{Hash: hash})
		h.token = append(h.token, explorer.TokenTransfer{Hash: hash, ContractAddress: tok})
	}
	return h
}

func TestBoughtTokens_FiltersUnsolicitedTransfers(t *testing.T) {
	w := addr(1)
	src := &fakeSource{wallets: map[string]history{w: {
		value: []explorer.Transaction{{Hash: "h1"}, {Hash: "h2"}},
		token: []explorer.TokenTransfer{
			{Hash: "h1", ContractAddress: "T1"},
			{Hash: "h3", ContractAddress: "T2"},
		},
	}}}
	tr, _ := newTracker(t, src, []string{w + ",whale"})

	got, err := tr.boughtTokens(context.Background(), w, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, got)
}

func TestBoughtTokens_DistinctContracts(t *testing.T) {
	w := addr(1)
	src := &fakeSource{wallets: map[string]history{w: {
		value: []explorer.Transaction{{Hash: "h1"}},
		token: []explorer.TokenTransfer{
			{Hash: "h1", ContractAddress: "T1"},
			{Hash: "h1", ContractAddress: "T1"},
			{Hash: "h1", ContractAddress: "WETH"},
		},
	}}}
	tr, _ := newTracker(t, src, nil)

	got, err := tr.boughtTokens(context.Background(), w, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "WETH"}, got)
}

func TestTrack_Threshold(t *testing.T) {
	src := &fakeSource{block: 14830000, wallets: map[string]history{}}
	var lines []string
	for i := 1; i <= 6; i++ {
		// T6 is bought by all six wallets, T5 by the first five.
		tokens := []string{"T6"}
		if i <= 5 {
			tokens = append(tokens, "T5")
		}
		src.wallets[addr(i)] = buys(i, tokens...)
		lines = append(lines, fmt.Sprintf("%s,w%d", addr(i), i))
	}
	tr, outDir := newTracker(t, src, lines)

	since := time.Date(2022, 5, 22, 9, 0, 0, 0, time.UTC)
	res, err := tr.Track(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, since.Unix(), src.gotSince)
	assert.EqualValues(t, 14830000, res.SinceBlock)
	for _, b := range src.fromBlock {
		assert.EqualValues(t, 14830000, b)
	}
	assert.Equal(t, 6, res.Wallets)
	assert.Equal(t, 2, res.Tokens)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "T6", res.Hits[0].Token)

	assert.Equal(t, filepath.Join(outDir, "result_2022-05-23 09.00.00.txt"), res.Path)
	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "T6,BUYERw1BUYERw2BUYERw3BUYERw4BUYERw5BUYERw6\n", string(raw))
	assert.Equal(t, 6, strings.Count(string(raw), BuyerMarker))
}

func TestTrack_SkipsFailedAndBlockedWallets(t *testing.T) {
	src := &fakeSource{block: 1, wallets: map[string]history{
		addr(1): buys(1, "T"),
		addr(2): {fail: true},
	}}
	lines := []string{
		addr(1) + ",ok",
		addr(2) + ",broken",
		wallets.DeadAddress + ",burn",
	}
	tr, _ := newTracker(t, src, lines)
	tr.minBuyers = 0

	res, err := tr.Track(context.Background(), time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Wallets)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, TokenHit{Token: "T", Buyers: []string{"ok"}}, res.Hits[0])
}

func TestTrack_BlockResolutionFailure(t *testing.T) {
	src := &fakeSource{blockErr: explorer.ErrBadEnvelope}
	tr, outDir := newTracker(t, src, []string{addr(1) + ",x"})

	_, err := tr.Track(context.Background(), time.Now())
	assert.ErrorIs(t, err, explorer.ErrBadEnvelope)
	assert.Empty(t, src.fromBlock)

	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestTrack_MissingInput(t *testing.T) {
	src := &fakeSource{block: 1}
	tr, _ := newTracker(t, src, nil)
	tr.input = filepath.Join(t.TempDir(), "missing.txt")

	_, err := tr.Track(context.Background(), time.Now())
	assert.ErrorContains(t, err, "load tracking input")
}

func TestTrack_EmptyResultFileStillWritten(t *testing.T) {
	src := &fakeSource{block: 1, wallets: map[string]history{addr(1): buys(1, "T")}}
	tr, _ := newTracker(t, src, []string{addr(1) + ",x"})

	res, err := tr.Track(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Hits)

	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestTrack_SameSecondRunsKeepBothFiles(t *testing.T) {
	src := &fakeSource{block: 1, wallets: map[string]history{addr(1): buys(1, "T")}}
	tr, outDir := newTracker(t, src, []string{addr(1) + ",x"})
	tr.minBuyers = 0

	first, err := tr.Track(context.Background(), time.Now())
	require.NoError(t, err)
	second, err := tr.Track(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "result_2022-05-23 09.00.00.txt"), first.Path)
	assert.Equal(t, filepath.Join(outDir, "result_2022-05-23 09.00.00_1.txt"), second.Path)
	for _, p := range []string{first.Path, second.Path} {
		raw, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "T,BUYERx\n", string(raw))
	}
}

func TestTokenHit_Line(t *testing.T) {
	h := TokenHit{Token: "0xabc", Buyers: []string{"buy_a,buy_b", "sell_c"}}
	assert.Equal(t, "0xabc,BUYERbuy_a,buy_bBUYERsell_c", h.Line())
}
