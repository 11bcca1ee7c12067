package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/pqhint/domain"
)

// FileOutputWriter writes reports to files or provided writers.
type FileOutputWriter struct {
	status io.Writer // where to print status messages (typically stderr)
}

// NewFileOutputWriter creates a new FileOutputWriter.
func NewFileOutputWriter(status io.Writer) *FileOutputWriter {
	if status == nil {
		status = os.Stderr
	}
	return &FileOutputWriter{status: status}
}

// Write implements domain.ReportWriter. In append mode a missing or empty
// file counts as fresh so the caller can emit a header once per file.
func (w *FileOutputWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, mode domain.WriteMode, writeFunc func(io.Writer, bool) error) error {
	if outputPath == "" {
		if writer == nil {
			return domain.NewOutputError("no output destination", nil)
		}
		if err := writeFunc(writer, true); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create output directory: %s", dir), err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == domain.WriteAppend {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(outputPath, flags, 0644)
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to open output file: %s", outputPath), err)
	}
	defer file.Close()

	fresh := true
	if mode == domain.WriteAppend {
		info, err := file.Stat()
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to stat output file: %s", outputPath), err)
		}
		fresh = info.Size() == 0
	}

	if err := writeFunc(file, fresh); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	if err := file.Close(); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to close output file: %s", outputPath), err)
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		absPath = outputPath
	}
	verb := "generated"
	if !fresh {
		verb = "updated"
	}
	fmt.Fprintf(w.status, "%s report %s: %s\n", strings.ToUpper(string(format)), verb, absPath)
	return nil
}
