package service

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/pqhint/domain"
)

// OutputFormatResolver resolves the report format from flags and file names.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine returns the explicit format when given, otherwise the format
// implied by the output file extension, otherwise csv.
func (r *OutputFormatResolver) Determine(format, outputPath string) (domain.OutputFormat, error) {
	if format != "" {
		return domain.ParseOutputFormat(strings.ToLower(format))
	}
	if f, ok := r.FromPath(outputPath); ok {
		return f, nil
	}
	return domain.OutputFormatCSV, nil
}

// FromPath maps a report file extension to a format.
func (r *OutputFormatResolver) FromPath(outputPath string) (domain.OutputFormat, bool) {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".csv":
		return domain.OutputFormatCSV, true
	case ".json":
		return domain.OutputFormatJSON, true
	case ".yaml", ".yml":
		return domain.OutputFormatYAML, true
	case ".txt":
		return domain.OutputFormatText, true
	default:
		return "", false
	}
}
