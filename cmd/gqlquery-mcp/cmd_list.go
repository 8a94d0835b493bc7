package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/usestring/gqlquery-mcp/pkg/mcpsrv"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		server, err := mcpsrv.NewServer(serverOptions()...)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}
		defer server.Close()
		st := server.Deps().Store

		names, err := st.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No definitions found in", st.Dir())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Name\tRules\tStatus\n")
		fmt.Fprintf(w, "----\t-----\t------\n")
		for _, name := range names {
			def, err := st.Load(name)
			if err != nil {
				fmt.Fprintf(w, "%s\t-\t%v\n", name, err)
				continue
			}
			fmt.Fprintf(w, "%s\t%d\tok\n", name, len(def.Rules))
		}
		return w.Flush()
	},
}
