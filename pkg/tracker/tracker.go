package tracker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wallet-hunter/pkg/config"
	"github.com/wallet-hunter/pkg/explorer"
	"github.com/wallet-hunter/pkg/wallets"
)

// BuyerMarker prefixes every buyer description in a result line.
const BuyerMarker = "BUYER"

const resultTimeLayout = "2006-01-02 15.04.05"

// Source is the slice of the explorer client tracking needs.
type Source interface {
	ResolveBlock(ctx context.Context, q explorer.BlockQuery) (uint64, error)
	WalletTransactions(ctx context.Context, wallet string, from uint64) ([]explorer.Transaction, error)
	WalletTokenTransfers(ctx context.Context, wallet string, from uint64) ([]explorer.TokenTransfer, error)
}

type Tracker struct {
	src       Source
	input     string
	outDir    string
	minBuyers int
	block     wallets.Blocklist
	now       func() time.Time
}

func New(cfg *config.Config, src Source) *Tracker {
	return &Tracker{
		src:       src,
		input:     cfg.TrackingFile,
		outDir:    cfg.TrackingResultsDir,
		minBuyers: cfg.TrackMinBuyers,
		block:     wallets.Reserved,
		now:       time.Now,
	}
}

// TokenHit is a token bought by tracked wallets; Buyers holds their
// descriptions in tracking-file order.
type TokenHit struct {
	Token  string
	Buyers []string
}

func (h TokenHit) Line() string {
	var b strings.Builder
	b.WriteString(h.Token)
	b.WriteByte(',')
	for _, d := range h.Buyers {
		b.WriteString(BuyerMarker)
		b.WriteString(d)
	}
	return b.String()
}

type Result struct {
	Since      time.Time
	SinceBlock uint64
	Path       string
	Wallets    int // wallets checked
	Skipped    int // wallets whose history could not be fetched
	Tokens     int // distinct tokens bought by any tracked wallet
	Hits       []TokenHit
}

// Track checks every tracked wallet's activity since the given time and writes
// the tokens bought by more than minBuyers of them to a new result file.
func (t *Tracker) Track(ctx context.Context, since time.Time) (*Result, error) {
	log.Info().Msgf("%s Starting track %s", banner, banner)

	sblock, err := t.src.ResolveBlock(ctx, explorer.AtTime(since))
	if err != nil {
		return nil, fmt.Errorf("since block: %w", err)
	}

	tracked, err := wallets.LoadTracking(t.input, t.block)
	if err != nil {
		return nil, fmt.Errorf("load tracking input: %w", err)
	}
	log.Info().Int("wallets", len(tracked)).Uint64("since_block", sblock).Msg("tracking wallets")

	res := &Result{Since: since, SinceBlock: sblock}
	buyers := map[string][]string{}
	var order []string

	for _, w := range tracked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, err := t.boughtTokens(ctx, w.Wallet, sblock)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error().Err(err).Str("wallet", w.Wallet).Msg("skipping wallet")
			res.Skipped++
			continue
		}
		res.Wallets++
		for _, tok := range tokens {
			if _, ok := buyers[tok]; !ok {
				order = append(order, tok)
			}
			buyers[tok] = append(buyers[tok], w.Description)
		}
	}

	res.Tokens = len(order)
	for _, tok := range order {
		if len(buyers[tok]) > t.minBuyers {
			res.Hits = append(res.Hits, TokenHit{Token: tok, Buyers: buyers[tok]})
		}
	}

	path, err := writeHits(t.outDir, "result_"+t.now().Format(resultTimeLayout), res.Hits)
	if err != nil {
		return nil, err
	}
	res.Path = path

	log.Info().Str("path", res.Path).Int("hits", len(res.Hits)).Int("skipped", res.Skipped).Msg("track finished")
	log.Info().Msgf("%s End of track %s", banner, banner)
	return res, nil
}

var banner = strings.Repeat("=", 30)

// boughtTokens returns the distinct token contracts a wallet received in
// transactions that also appear in its plain-value history. A token transfer
// with no matching value transaction was sent to the wallet by someone else
// (airdrops, scam tokens) and is not a buy.
func (t *Tracker) boughtTokens(ctx context.Context, wallet string, from uint64) ([]string, error) {
	tokenTxs, err := t.src.WalletTokenTransfers(ctx, wallet, from)
	if err != nil {
		return nil, fmt.Errorf("token transfers: %w", err)
	}
	valueTxs, err := t.src.WalletTransactions(ctx, wallet, from)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}

	hashes := make(map[string]struct{}, len(valueTxs))
	for _, tx := range valueTxs {
		hashes[tx.Hash] = struct{}{}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, tx := range tokenTxs {
		if _, ok := hashes[tx.Hash]; !ok {
			continue
		}
		if _, ok := seen[tx.ContractAddress]; ok {
			continue
		}
		seen[tx.ContractAddress] = struct{}{}
		out = append(out, tx.ContractAddress)
	}
	return out, nil
}

// writeHits writes hits to a new file named base in dir. A name already
// taken by an earlier run in the same second gets a numeric suffix.
func writeHits(dir, base string, hits []TokenHit) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	f, path, err := createExclusive(dir, base)
	if err != nil {
		return "", err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, h := range hits {
		bw.WriteString(h.Line())
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("write result file: %w", err)
	}
	return path, nil
}

const maxResultSuffix = 100

func createExclusive(dir, base string) (*os.File, string, error) {
	for i := 0; i < maxResultSuffix; i++ {
		name := base + ".txt"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.txt", base, i)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if i > 0 {
				log.Warn().Str("path", path).Msg("result file name taken, wrote to suffixed file")
			}
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create result file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create result file: %s_*.txt: %d names taken", base, maxResultSuffix)
}
