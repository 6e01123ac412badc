package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dvload/pkg/dvload"
)

var checkCmd = &cobra.Command{
	Use:   "check [source.csv]",
	Short: "Verify a load could run, without writing",
	Long: `Check connects to the warehouse and reports which of the nine vault tables
are missing from the schema. Given a source file, it also reads the batch and
prints how many distinct entities it holds.

Nothing is written: the check transaction is always rolled back.

Exits with code 14 when tables are missing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

type checkFlagValues struct {
	connectionFlags
	runFlags
}

var checkFlags checkFlagValues

func init() {
	rootCmd.AddCommand(checkCmd)

	addConnectionFlags(checkCmd, &checkFlags.connectionFlags)
	addRunFlags(checkCmd, &checkFlags.runFlags)
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	var sourcePath string
	if len(args) > 0 {
		sourcePath = args[0]
	}

	config, err := buildLoadConfig(cmd, sourcePath, checkFlags.connectionFlags, checkFlags.runFlags, terminalPassword, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := withInterrupt(context.Background(), "check")
	defer cancel()

	report, err := newLoader(verbose).Check(ctx, config)
	if report != nil {
		printCheckReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}

func printCheckReport(w io.Writer, r *dvload.CheckReport) {
	if r.SourceRows > 0 {
		fmt.Fprintf(w, "Transactions:   %d\n", r.SourceRows)
		fmt.Fprintf(w, "Customers:      %d\n", r.DistinctCustomers)
		fmt.Fprintf(w, "Products:       %d\n", r.DistinctProducts)
		fmt.Fprintf(w, "Locations:      %d\n", r.DistinctLocations)
		fmt.Fprintf(w, "Orders:         %d\n", r.DistinctOrders)
	}
	if len(r.MissingTables) == 0 {
		fmt.Fprintf(w, "Schema %s: all vault tables present\n", r.Schema)
		return
	}
	fmt.Fprintf(w, "Schema %s: %d missing table(s)\n", r.Schema, len(r.MissingTables))
	for _, t := range r.MissingTables {
		fmt.Fprintf(w, "  - %s\n", t)
	}
}
