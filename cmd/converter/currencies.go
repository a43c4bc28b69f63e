package main

import (
	"currency-converter/internal/catalog"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List the currencies of the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cfg.Catalog.Path, log)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, r := range cat.Records() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Code, r.Symbol, r.Name)
		}
		return w.Flush()
	},
}
