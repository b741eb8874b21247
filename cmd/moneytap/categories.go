package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/juanfec/moneytap/internal/model"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category catalog",
		Long: `Print every known category with its display name, primary group,
and whether it is excluded from spending totals.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "CATEGORY\tDISPLAY NAME\tGROUP\tIN TOTALS")
			_, _ = fmt.Fprintln(w, "────────\t────────────\t─────\t─────────")

			for _, c := range model.AllCategories() {
				inTotals := "yes"
				if c.ExcludedFromTotals() {
					inTotals = "no"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					c, c.DisplayName(), c.Primary(), inTotals)
			}

			return w.Flush()
		},
	}
}
