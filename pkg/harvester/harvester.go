package harvester

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wallet-hunter/pkg/config"
	"github.com/wallet-hunter/pkg/explorer"
	"github.com/wallet-hunter/pkg/prompt"
	"github.com/wallet-hunter/pkg/wallets"
)

// ErrStalledPage means a full page ended on the block it started from, so the
// block cursor cannot advance.
var ErrStalledPage = errors.New("harvest: full page did not advance past its start block")

// Source is the slice of the explorer client a harvest needs.
type Source interface {
	ResolveBlock(ctx context.Context, q explorer.BlockQuery) (uint64, error)
	TokenTransfers(ctx context.Context, token string, from, to uint64) ([]explorer.TokenTransfer, error)
}

type Harvester struct {
	src     Source
	dir     string
	loc     *time.Location
	confirm prompt.Confirmer
	block   wallets.Blocklist
}

func New(cfg *config.Config, src Source, confirm prompt.Confirmer) *Harvester {
	return &Harvester{
		src:     src,
		dir:     cfg.WalletsDir,
		loc:     cfg.Location,
		confirm: confirm,
		block:   wallets.Reserved,
	}
}

// Params describe one harvest. Start and End use explorer.DateTimeLayout.
type Params struct {
	Token     string
	Start     string
	End       string
	Label     string
	Direction wallets.Direction
}

type Result struct {
	Token      string
	Label      string
	Direction  wallets.Direction
	Path       string
	StartBlock uint64
	EndBlock   uint64
	Pages      int
	Added      int
	Complete   bool   // every page up to the end block was read
	StopReason string // why an incomplete harvest stopped
}

// Harvest collects the counterparties of a token's transfers between Start and
// End into the wallet list for (Direction, Label). Buyers are the "to" side,
// sellers the "from" side.
func (h *Harvester) Harvest(ctx context.Context, p Params) (*Result, error) {
	if !wallets.IsAddress(p.Token) {
		return nil, fmt.Errorf("token %q is not a hex address", p.Token)
	}
	if p.Label == "" {
		return nil, errors.New("harvest label is empty")
	}
	if p.Direction != wallets.Buy && p.Direction != wallets.Sell {
		return nil, fmt.Errorf("unknown direction %q", p.Direction)
	}

	log.Info().Msgf("%s Starting harvest %s", banner, banner)
	log.Info().Str("token", p.Token).Str("label", p.Label).Str("direction", string(p.Direction)).Msg("harvest params")

	path := wallets.ListPath(h.dir, p.Direction, p.Label)
	if _, err := os.Stat(path); err == nil {
		ok, err := h.confirm.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path), true)
		if err != nil {
			return nil, err
		}
		if !ok {
			fmt.Println("Please back it up first and run the harvest again")
			return nil, prompt.ErrAborted
		}
	}

	sblock, err := h.src.ResolveBlock(ctx, explorer.AtDateTime(p.Start, h.loc))
	if err != nil {
		return nil, fmt.Errorf("start block: %w", err)
	}
	eblock, err := h.src.ResolveBlock(ctx, explorer.AtDateTime(p.End, h.loc))
	if err != nil {
		return nil, fmt.Errorf("end block: %w", err)
	}
	if eblock < sblock {
		return nil, fmt.Errorf("end block %d is before start block %d", eblock, sblock)
	}

	list, err := wallets.CreateList(path)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Token:      p.Token,
		Label:      p.Label,
		Direction:  p.Direction,
		Path:       path,
		StartBlock: sblock,
		EndBlock:   eblock,
	}

	from := sblock
	for {
		log.Info().Uint64("sblock", from).Uint64("eblock", eblock).Msg("getting wallets")

		page, err := h.src.TokenTransfers(ctx, p.Token, from, eblock)
		res.Pages++
		if err != nil {
			if ctx.Err() != nil {
				res.StopReason = "interrupted"
				return res, ctx.Err()
			}
			log.Error().Err(err).Str("token", p.Token).Msg("closing harvest due to request/json error")
			res.StopReason = fmt.Sprintf("page request from block %d failed", from)
			break
		}
		log.Info().Int("records", len(page)).Msg("page fetched")

		n, err := list.Append(counterparties(page, p.Direction), h.block)
		if err != nil {
			return res, err
		}
		res.Added += n

		if len(page) < explorer.PageSize {
			res.Complete = true
			break
		}

		next, err := page[len(page)-1].Block()
		if err != nil {
			log.Error().Err(err).Str("block", page[len(page)-1].BlockNumber).Msg("bad block number in page")
			res.StopReason = fmt.Sprintf("bad block number %q in page", page[len(page)-1].BlockNumber)
			break
		}
		if next <= from {
			res.StopReason = fmt.Sprintf("full page did not advance past block %d", from)
			return res, fmt.Errorf("%w (block %d)", ErrStalledPage, from)
		}
		from = next
	}

	log.Info().Str("path", res.Path).Int("added", res.Added).Int("pages", res.Pages).Msg("harvest finished")
	log.Info().Msgf("%s End of harvest %s", banner, banner)
	return res, nil
}

var banner = strings.Repeat("=", 30)

func counterparties(page []explorer.TokenTransfer, d wallets.Direction) []string {
	seen := make(map[string]struct{}, len(page))
	out := make([]string, 0, len(page))
	for _, tx := range page {
		w := tx.To
		if d == wallets.Sell {
			w = tx.From
		}
		if _, ok := seen[w]; ok || w == "" {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
