package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/danmuck/csmacd/internal/simulation"
	"github.com/pterm/pterm"
)

// RenderTable writes a per-station summary table followed by session totals.
func RenderTable(w io.Writer, res simulation.Result) error {
	data := pterm.TableData{
		{"Station", "Delivered", "Target", "Reason", "Attempt", "Collisions", "Backoff"},
	}
	for _, s := range res.Stations {
		data = append(data, []string{
			s.ID,
			strconv.Itoa(s.Delivered),
			strconv.Itoa(s.Target),
			string(s.Reason),
			strconv.Itoa(s.Attempt),
			strconv.Itoa(s.Collisions),
			s.BackoffTime.String(),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}

	totals := res.Totals()
	_, err = fmt.Fprintf(w, "%s\n%d/%d frames successfully transmitted, %d collisions, %d stations exhausted (%s)\n",
		table, totals.Delivered, totals.Target, totals.Collisions, totals.Exhausted, res.Elapsed)
	return err
}
