package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/liifit/store"
)

func newShowCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <result>",
		Short: "Summarize a saved result document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.Load(args[0])
			if err != nil {
				return err
			}

			return writeSummary(cmd.OutOrStdout(), doc)
		},
	}
}

// writeSummary prints one row per problem with the best parameters ± σ.
func writeSummary(w io.Writer, doc *store.Document) error {
	fmt.Fprintf(w, "run %s", doc.RunID)
	if doc.Group != "" {
		fmt.Fprintf(w, " (%s)", doc.Group)
	}
	fmt.Fprintf(w, " mode=%s problems=%d\n", doc.Mode, len(doc.Problems))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	head := []string{"SIGNAL", "STATUS", "REASON", "ITER", "CHI2", "WARP", "LAG"}
	for _, p := range doc.Params.Params {
		head = append(head, strings.ToUpper(p.ID.String())+" ("+p.Unit+")")
	}
	fmt.Fprintln(tw, strings.Join(head, "\t"))

	for _, p := range doc.Problems {
		row := []string{p.Key.String(), p.Status, p.Reason, fmt.Sprint(len(p.Iterations))}
		best := p.Best()
		if best == nil {
			row = append(row, "-", "-", "-")
			for range doc.Params.Params {
				row = append(row, "-")
			}
		} else {
			row = append(row, fmt.Sprintf("%.4g", best.ChiSquare()), fmt.Sprintf("%.3g", p.Warp), fmt.Sprint(p.Lag))
			for i := 0; i < best.NumParams(); i++ {
				row = append(row, fmt.Sprintf("%.5g ± %.2g", best.Value(i), best.Uncertainty(i)))
			}
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}
