// Command inkwellctl runs schema and seeding operations against the configured database.
package main

import (
	"fmt"
	"os"

	"inkwell/internal/config"

	"github.com/spf13/cobra"
)

var cfg *config.Config

// newRootCmd builds the command tree. Configuration is loaded once before any subcommand runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inkwellctl [command]",
		Short:         "Inkwell database administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
