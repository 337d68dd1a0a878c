package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

// Table prints audit results as aligned columns
type Table struct {
	out io.Writer
	now func() time.Time
}

// NewTable creates a table writer; nil arguments fall back to stdout and time.Now
func NewTable(out io.Writer, now func() time.Time) *Table {
	if out == nil {
		out = os.Stdout
	}
	if now == nil {
		now = time.Now
	}
	return &Table{out: out, now: now}
}

// ReportInactive lists the inactive interfaces of one switch
func (t *Table) ReportInactive(target string, thresholdDays int, verdicts []entities.InactivityVerdict) {
	fmt.Fprintf(t.out, "The following ports have been inactive for %d days or more:\n", thresholdDays)

	w := tabwriter.NewWriter(t.out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SWITCH\tINTERFACE\tLAST INPUT\tIDLE")
	now := t.now()
	for _, verdict := range verdicts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", target, verdict.Interface, verdict.LastInput, idle(verdict, now))
	}
	fmt.Fprintf(w, "Total:\t%d\t\t\n", len(verdicts))
	w.Flush()
}

// Status prints a final one-line outcome
func (t *Table) Status(message string) {
	fmt.Fprintln(t.out, message)
}

func idle(verdict entities.InactivityVerdict, now time.Time) string {
	if verdict.LastInput.IsNever() {
		return "never used"
	}
	return humanize.RelTime(now.Add(-verdict.Idle), now, "ago", "from now")
}
