package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/provider"
)

// NewStripCommentsCmd creates the strip-comments command.
func NewStripCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strip-comments <project>...",
		Short: "Remove all comments from Scratch projects in place",
		Long: `Remove every comment from Scratch projects (.sb3 or project.json).

Editors sometimes keep comments attached to deleted blocks, which leaves the
project unreadable. The files are rewritten in place.

Example:
  pqhint strip-comments sources/*.sb3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commandLogger(cmd)
			failed := 0
			for _, path := range args {
				removed, err := provider.StripComments(path)
				if err != nil {
					logger.Warn("failed to strip comments", "path", path, "error", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %d comment(s)\n", path, removed)
			}
			if failed > 0 {
				return domain.NewParseError(fmt.Sprintf("%d of %d file(s)", failed, len(args)), nil)
			}
			return nil
		},
	}
}
