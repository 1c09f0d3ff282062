package grader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wallet-hunter/pkg/config"
	"github.com/wallet-hunter/pkg/prompt"
	"github.com/wallet-hunter/pkg/wallets"
)

// Grader cross-references the harvested wallet lists.
type Grader struct {
	walletsDir string
	gradedDir  string
	confirm    prompt.Confirmer
}

func New(cfg *config.Config, confirm prompt.Confirmer) *Grader {
	return &Grader{walletsDir: cfg.WalletsDir, gradedDir: cfg.GradedDir, confirm: confirm}
}

// GradedWallet is a wallet found in two or more lists, with the list labels
// in file-name order.
type GradedWallet struct {
	Address string
	Labels  []string
}

func (g GradedWallet) Line() string {
	return g.Address + "," + strings.Join(g.Labels, ",")
}

type Result struct {
	Name    string
	Report  string
	Lists   int
	Total   int // addresses read across all lists
	Wallets []GradedWallet
	Purged  bool
}

// ReportPath is where report name is appended to.
func ReportPath(dir, name string) string {
	return filepath.Join(dir, name+".txt")
}

// Grade appends one line per wallet present in at least two lists to the
// report, then offers to delete the lists. With fewer than two lists there
// is nothing to cross-reference and nothing is written.
func (g *Grader) Grade(ctx context.Context, name string) (*Result, error) {
	if name == "" {
		return nil, fmt.Errorf("report name is empty")
	}
	log.Info().Msgf("%s Starting grade %s", banner, banner)
	log.Info().Str("report", name).Msg("grade params")

	files, err := listFiles(g.walletsDir)
	if err != nil {
		return nil, err
	}
	res := &Result{Name: name, Report: ReportPath(g.gradedDir, name), Lists: len(files)}
	if len(files) < 2 {
		log.Info().Int("lists", len(files)).Msg("fewer than two lists, nothing to grade")
		return res, nil
	}

	lists := make(map[string][]string, len(files))
	labels := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		addrs, err := wallets.OpenList(filepath.Join(g.walletsDir, f)).Load()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		label := strings.TrimSuffix(f, filepath.Ext(f))
		lists[label] = addrs
		labels = append(labels, label)
		res.Total += len(addrs)
	}

	res.Wallets = crossReference(labels, lists)
	log.Info().Int("all", res.Total).Int("duplicates", len(res.Wallets)).Msg("lists graded")

	if err := appendReport(res.Report, res.Wallets); err != nil {
		return nil, err
	}

	fmt.Println("Current wallets directory:", files)
	ok, err := g.confirm.Confirm("You're done with these lists. Delete all?", false)
	if err != nil {
		return res, err
	}
	if ok {
		for _, f := range files {
			if err := os.Remove(filepath.Join(g.walletsDir, f)); err != nil {
				return res, fmt.Errorf("delete %s: %w", f, err)
			}
		}
		res.Purged = true
		log.Info().Int("lists", len(files)).Msg("wallet lists deleted")
	}

	log.Info().Str("report", res.Report).Msg("grade finished")
	log.Info().Msgf("%s End of grade %s", banner, banner)
	return res, nil
}

var banner = strings.Repeat("=", 30)

// crossReference returns every wallet found under two or more labels, sorted
// by address. labels fixes the label order within each entry.
func crossReference(labels []string, lists map[string][]string) []GradedWallet {
	seenIn := map[string][]string{}
	for _, label := range labels {
		inList := map[string]bool{}
		for _, w := range lists[label] {
			if inList[w] {
				continue
			}
			inList[w] = true
			seenIn[w] = append(seenIn[w], label)
		}
	}

	var out []GradedWallet
	for w, ls := range seenIn {
		if len(ls) > 1 {
			out = append(out, GradedWallet{Address: w, Labels: ls})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func appendReport(path string, graded []GradedWallet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create graded dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, g := range graded {
		bw.WriteString(g.Line())
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// listFiles returns the regular files in dir, sorted by name. A missing dir
// has no files.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
