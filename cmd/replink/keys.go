package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groovebox/replink/internal/registry"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the operation table with suggested key bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			printKeys(cmd.OutOrStdout())

			return nil
		},
	}
}

func printKeys(w io.Writer) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	for _, e := range registry.Entries() {
		name := string(e.Op)
		if e.TakesArg {
			name += " <arg>"
		}

		fmt.Fprintf(tw, ":%s\t%s\t%s\t%s\n", name, e.Key, e.Menu, e.Help)
	}

	_ = tw.Flush()
}
