package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/internal/render"
	"github.com/ludo-technologies/pqhint/service"
)

// NewShowCmd creates the show command, which prints a project as
// pseudocode the way it is seen by the comparison.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Print a project as block pseudocode",
		Long: `Print a project as indented block pseudocode.

Useful to check how a project file is understood before recommending edits.

Examples:
  pqhint show learner.sb3
  pqhint show solution.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := service.NewProjectLoader(nil).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), render.Program(program))
			return err
		},
	}
}
