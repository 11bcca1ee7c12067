package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/provider"
	"github.com/ludo-technologies/pqhint/service"
)

// ExportCommand converts projects into tree documents
type ExportCommand struct {
	output string
	format string
}

// CreateCobraCommand creates the cobra command for exports
func (e *ExportCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Convert a project into a tree document",
		Long: `Convert a Scratch or Python project into a YAML or JSON tree document.

Tree documents are plain text, so reference corpora can be reviewed and
edited by hand and loaded again by every other command.

Examples:
  pqhint export alice.sb3 -o references/alice.yaml
  pqhint export alice.sb3 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: e.runExport,
	}

	cmd.Flags().StringVarP(&e.output, "output", "o", "", "Output file (stdout when omitted)")
	cmd.Flags().StringVarP(&e.format, "format", "f", "", "Output format: yaml or json (default from the output extension, else yaml)")

	return cmd
}

func (e *ExportCommand) runExport(cmd *cobra.Command, args []string) error {
	format, err := e.resolveFormat()
	if err != nil {
		return err
	}

	program, err := service.NewProjectLoader(nil).Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	doc := provider.Marshal(program)

	write := func(w io.Writer) error {
		if format == domain.OutputFormatJSON {
			return service.WriteJSON(w, doc)
		}
		return service.WriteYAML(w, doc)
	}

	if e.output == "" {
		return write(cmd.OutOrStdout())
	}
	if strings.EqualFold(filepath.Clean(e.output), filepath.Clean(args[0])) {
		return domain.NewValidationError("refusing to overwrite the input project")
	}
	if dir := filepath.Dir(e.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return domain.NewOutputError("failed to create output directory", err)
		}
	}
	file, err := os.Create(e.output)
	if err != nil {
		return domain.NewOutputError("failed to create output file", err)
	}
	defer file.Close()
	if err := write(file); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", program.Name, e.output)
	return nil
}

// resolveFormat picks yaml or json from --format or the output extension.
func (e *ExportCommand) resolveFormat() (domain.OutputFormat, error) {
	switch strings.ToLower(e.format) {
	case "yaml", "yml":
		return domain.OutputFormatYAML, nil
	case "json":
		return domain.OutputFormatJSON, nil
	case "":
		if strings.EqualFold(filepath.Ext(e.output), ".json") {
			return domain.OutputFormatJSON, nil
		}
		return domain.OutputFormatYAML, nil
	default:
		return "", domain.NewUnsupportedFormatError(e.format)
	}
}

// NewExportCmd creates and returns the export cobra command
func NewExportCmd() *cobra.Command {
	return (&ExportCommand{}).CreateCobraCommand()
}
