package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/internal/logging"
	"github.com/ludo-technologies/pqhint/internal/version"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pqhint",
		Short: "Next-step hints for visual programming projects",
		Long: `pqhint compares a learner's project with reference projects that pass
more tests and recommends which blocks to add or remove, and where.

Projects are compared with pq-gram profiles. Each recommendation names the
affected block, its parent and its neighbours so it can be placed exactly.

Supported inputs:
  • Scratch 3 projects (.sb3 or project.json)
  • Tree documents (.yaml, .yml, .json)
  • Python modules (.py)`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress log output")

	rootCmd.AddCommand(NewRecommendCmd())
	rootCmd.AddCommand(NewDistanceCmd())
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewStripCommentsCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// commandLogger creates a stderr logger honouring --verbose and --quiet.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return logging.NewLogger(cmd.ErrOrStderr(), logging.LevelFromFlags(verbose, quiet))
}

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		os.Exit(1)
	}
}
