package panel

import (
	"fmt"
	"github.com/KushnerykPavel/ledger-dashboard/internal/feed"
	"github.com/fatih/color"
	"io"
	"sync"
	"text/tabwriter"
)

// Terminal prints the panel to a writer. Status is the last column so the
// colour escapes do not disturb the alignment.
type Terminal struct {
	mu   sync.Mutex
	out  io.Writer
	good func(a ...interface{}) string
	warn func(a ...interface{}) string
	bad  func(a ...interface{}) string
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:  out,
		good: color.New(color.FgGreen).SprintFunc(),
		warn: color.New(color.FgYellow).SprintFunc(),
		bad:  color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

func (t *Terminal) ShowSkeleton(rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "loading transactions (%d rows)...\n", rows)
}

func (t *Terminal) ShowRows(hint string, rows []feed.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, hint)
	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tMERCHANT\tAMOUNT\tTIME\tSTATUS")
	for _, r := range rows {
		status := t.warn(r.Status)
		if r.Style == feed.StyleGood {
			status = t.good(r.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Type, r.Merchant, r.Amount, r.Time, status)
	}
	_ = tw.Flush()
}

func (t *Terminal) ShowError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.bad(message))
}
