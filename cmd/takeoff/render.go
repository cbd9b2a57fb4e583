package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dd0wney/cluso-takeoff/pkg/pivot"
	"github.com/dd0wney/cluso-takeoff/pkg/scan"
)

func renderReport(w io.Writer, report *scan.Report) {
	fmt.Fprintf(w, "run %s: %d components, %d contributions, %.2f total length, %d groups, %s\n\n",
		report.RunID,
		report.Stats.Components,
		report.Stats.Contributions,
		report.Stats.TotalLength,
		report.Stats.Groups,
		report.Stats.Duration.Round(0))

	renderTable(w, "Installed lengths", report.Lengths)
	renderTable(w, "Part counts", report.Counts)

	if len(report.Exclusions) > 0 {
		fmt.Fprintf(w, "Exclusions (%d):\n", len(report.Exclusions))
		for _, e := range report.Exclusions {
			fmt.Fprintf(w, "  %s  %s  %s\n", e.Component, e.Reason, e.Detail)
		}
		fmt.Fprintln(w)
	}
}

func renderTable(w io.Writer, title string, t *pivot.Table) {
	if t.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	columns := t.Columns()

	fmt.Fprint(tw, "ID\tRow\tCategory\tUnit")
	for _, col := range columns {
		fmt.Fprintf(tw, "\t%s", col)
	}
	fmt.Fprintln(tw)

	for _, key := range t.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s", key.BillableID, key.Label, key.Category, key.Unit)
		for _, col := range columns {
			v := t.Value(key, col)
			if v == 0 {
				fmt.Fprint(tw, "\t-")
			} else {
				fmt.Fprintf(tw, "\t%.2f", v)
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	fmt.Fprintln(w)
}
