package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/gcp"
	"github.com/spf13/cobra"
)

var timeout time.Duration

// rootCmd runs the back-office operations from a workstation. Configuration comes
// from the same environment variables the deployed functions read.
var rootCmd = &cobra.Command{
	Use:           "adminctl",
	Short:         "Operate the back-office functions from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		gcp.SetupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(deletePostCmd)
	rootCmd.AddCommand(parseImportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
