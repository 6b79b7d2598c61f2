package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SmartChain-HD/AI/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [domain]",
	Short: "List domains, or the slots of one domain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := catalog.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range reg.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		d, err := reg.Domain(args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLOT\tNAME\tREQUIRED\tKINDS")
		for _, s := range d.Slots {
			kinds := make([]string, len(s.Kinds))
			for i, k := range s.Kinds {
				kinds[i] = string(k)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", s.Name, s.DisplayName, s.Required, strings.Join(kinds, ","))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
