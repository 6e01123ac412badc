package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dvload",
	Short: "Incremental Data Vault 2.0 loader",
	Long: `dvload loads a flat retail order batch (CSV) into a Data Vault 2.0
warehouse: hubs for customers, products, locations and orders, the order link,
and one satellite per hub.

Every run derives MD5 hash keys from the business attributes, inserts only the
hub and link keys the warehouse has not seen, appends new satellite versions,
and commits everything in a single transaction. A failed run writes nothing.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Source file missing, empty or malformed
  13 - Load failed (transaction rolled back)
  14 - Required vault tables missing`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for dvload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
