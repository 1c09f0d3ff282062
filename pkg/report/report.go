package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/wallet-hunter/pkg/db"
	"github.com/wallet-hunter/pkg/explorer"
	"github.com/wallet-hunter/pkg/grader"
	"github.com/wallet-hunter/pkg/harvester"
	"github.com/wallet-hunter/pkg/tracker"
)

var (
	headline = color.New(color.FgCyan, color.Bold)
	warn     = color.New(color.FgYellow)
)

func Harvest(w io.Writer, r *harvester.Result) {
	headline.Fprintf(w, "Harvest %s (%s)\n", r.Label, r.Direction)
	t := newTable(w, "Token", "Blocks", "Pages", "Added", "File")
	t.Append([]string{
		r.Token,
		fmt.Sprintf("%d-%d", r.StartBlock, r.EndBlock),
		strconv.Itoa(r.Pages),
		strconv.Itoa(r.Added),
		r.Path,
	})
	t.Render()
	if !r.Complete {
		reason := r.StopReason
		if reason == "" {
			reason = "unknown cause"
		}
		warn.Fprintf(w, "harvest stopped early (%s); the list is partial\n", reason)
	}
}

func Grade(w io.Writer, r *grader.Result) {
	headline.Fprintf(w, "Grade %s: %d lists, %d addresses, %d flagged\n", r.Name, r.Lists, r.Total, len(r.Wallets))
	if r.Lists < 2 {
		warn.Fprintln(w, "fewer than two wallet lists, nothing graded")
		return
	}
	t := newTable(w, "Wallet", "Lists")
	for _, g := range r.Wallets {
		t.Append([]string{g.Address, strings.Join(g.Labels, ", ")})
	}
	t.Render()
	fmt.Fprintf(w, "report: %s\n", r.Report)
}

func Tracking(w io.Writer, r *tracker.Result) {
	headline.Fprintf(w, "Tracking since %s (block %d): %d wallets, %d tokens, %d hits\n",
		r.Since.Format("2006-01-02 15:04"), r.SinceBlock, r.Wallets, r.Tokens, len(r.Hits))
	if r.Skipped > 0 {
		warn.Fprintf(w, "%d wallets skipped after request failures\n", r.Skipped)
	}
	t := newTable(w, "Token", "Buyers", "Descriptions")
	for _, h := range r.Hits {
		t.Append([]string{h.Token, strconv.Itoa(len(h.Buyers)), strings.Join(h.Buyers, " | ")})
	}
	t.Render()
	fmt.Fprintf(w, "result: %s\n", r.Path)
}

// History renders ledger rows for the history command.
func History(w io.Writer, harvests []db.HarvestRun, hits []db.TrackingHit) {
	headline.Fprintln(w, "Recent harvests")
	t := newTable(w, "When", "Token", "List", "Added", "Complete")
	for _, h := range harvests {
		t.Append([]string{
			h.CreatedAt.Format("2006-01-02 15:04"),
			explorer.Abbrev(h.Token),
			h.Direction + "_" + h.Label,
			strconv.Itoa(h.Added),
			strconv.FormatBool(h.Complete),
		})
	}
	t.Render()

	headline.Fprintln(w, "Recent tracking hits")
	t = newTable(w, "When", "Token", "Buyers")
	for _, h := range hits {
		t.Append([]string{h.CreatedAt.Format("2006-01-02 15:04"), h.Token, strconv.Itoa(len(h.Buyers))})
	}
	t.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	return t
}
