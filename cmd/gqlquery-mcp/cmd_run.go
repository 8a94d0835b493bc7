package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/usestring/gqlquery-mcp/pkg/mcpsrv"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

var runPretty bool

var runCmd = &cobra.Command{
	Use:   "run [name...]",
	Short: "Execute stored definitions against the data source",
	Long: `Runs the named definitions (all stored definitions when none are named)
through DATASOURCE_URL and prints one JSON result per definition on stdout.
Exits non-zero when any definition fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		server, err := mcpsrv.NewServer(serverOptions()...)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}
		defer server.Close()
		d := server.Deps()

		defs, err := selectDefinitions(d, args)
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			return fmt.Errorf("no definitions in %s", d.Config.StoreDir)
		}

		results := d.Runner.RunAll(ctx, defs)

		enc := json.NewEncoder(os.Stdout)
		if runPretty {
			enc.SetIndent("", "  ")
		}
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d definitions failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runPretty, "pretty", false, "Indent the JSON output")
}

// selectDefinitions loads the named definitions, or every stored definition
// when names is empty. Any document that fails to load is an error.
func selectDefinitions(d *mcpsrv.Deps, names []string) (map[string]querydef.Definition, error) {
	if len(names) == 0 {
		defs, failed, err := d.Store.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("list definitions: %w", err)
		}
		for name, ferr := range failed {
			return nil, fmt.Errorf("load %s: %w", name, ferr)
		}
		return defs, nil
	}

	defs := make(map[string]querydef.Definition, len(names))
	for _, name := range names {
		def, err := d.Store.Load(name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		defs[name] = def
	}
	return defs, nil
}

