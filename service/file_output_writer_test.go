package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pqhint/domain"
)

func TestFileOutputWriterAppend(t *testing.T) {
	var status bytes.Buffer
	w := NewFileOutputWriter(&status)
	path := filepath.Join(t.TempDir(), "out", "hints.csv")

	var freshness []bool
	write := func(line string) func(io.Writer, bool) error {
		return func(out io.Writer, fresh bool) error {
			freshness = append(freshness, fresh)
			if fresh {
				fmt.Fprintln(out, "header")
			}
			_, err := fmt.Fprintln(out, line)
			return err
		}
	}

	require.NoError(t, w.Write(nil, path, domain.OutputFormatCSV, domain.WriteAppend, write("a")))
	require.NoError(t, w.Write(nil, path, domain.OutputFormatCSV, domain.WriteAppend, write("b")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "header\na\nb\n", string(data))
	assert.Equal(t, []bool{true, false}, freshness)
	assert.Contains(t, status.String(), "CSV report generated")
	assert.Contains(t, status.String(), "CSV report updated")
}

func TestFileOutputWriterTruncate(t *testing.T) {
	w := NewFileOutputWriter(io.Discard)
	path := filepath.Join(t.TempDir(), "hints.json")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0644))

	err := w.Write(nil, path, domain.OutputFormatJSON, domain.WriteTruncate, func(out io.Writer, fresh bool) error {
		assert.True(t, fresh)
		_, err := io.WriteString(out, "{}")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFileOutputWriterToWriter(t *testing.T) {
	var status, out bytes.Buffer
	w := NewFileOutputWriter(&status)

	err := w.Write(&out, "", domain.OutputFormatText, domain.WriteAppend, func(dst io.Writer, fresh bool) error {
		assert.True(t, fresh)
		_, err := io.WriteString(dst, "report")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "report", out.String())
	assert.Empty(t, status.String())

	err = w.Write(nil, "", domain.OutputFormatText, domain.WriteAppend, func(io.Writer, bool) error { return nil })
	assert.True(t, domain.HasCode(err, domain.ErrCodeOutputError))
}

func TestFileOutputWriterWrapsWriteErrors(t *testing.T) {
	w := NewFileOutputWriter(io.Discard)
	err := w.Write(io.Discard, "", domain.OutputFormatCSV, domain.WriteTruncate, func(io.Writer, bool) error {
		return assert.AnError
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
