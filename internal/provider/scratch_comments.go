package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// StripComments deletes every comment from the Scratch project at path and
// rewrites the file in place. The editor sometimes leaves hint comments
// attached to blocks that no longer exist, which makes the project
// unreadable. It returns the number of comments removed.
func StripComments(path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".sb3") {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		cleaned, removed, err := stripProjectComments(data)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		return removed, replaceFile(path, func(w io.Writer) error {
			_, err := w.Write(cleaned)
			return err
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open archive %s: %w", path, err)
	}

	removed := 0
	err = replaceFile(path, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, f := range archive.File {
			if err := copyEntry(zw, f, &removed); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		}
		return zw.Close()
	})
	return removed, err
}

func copyEntry(zw *zip.Writer, f *zip.File, removed *int) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	header := f.FileHeader
	out, err := zw.CreateHeader(&header)
	if err != nil {
		return err
	}

	if f.Name != projectEntry {
		_, err = io.Copy(out, rc)
		return err
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	cleaned, n, err := stripProjectComments(data)
	if err != nil {
		return err
	}
	*removed += n
	_, err = out.Write(cleaned)
	return err
}

// stripProjectComments empties every target's comment table and drops the
// comment reference of each block.
func stripProjectComments(data []byte) ([]byte, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var project map[string]any
	if err := dec.Decode(&project); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", projectEntry, err)
	}

	targets, ok := project["targets"].([]any)
	if !ok {
		return nil, 0, fmt.Errorf("no targets: %w", ErrUnsupportedDocument)
	}

	removed := 0
	for _, t := range targets {
		target, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if comments, ok := target["comments"].(map[string]any); ok {
			removed += len(comments)
		}
		target["comments"] = map[string]any{}

		blocks, _ := target["blocks"].(map[string]any)
		for _, b := range blocks {
			if block, ok := b.(map[string]any); ok {
				delete(block, "comment")
			}
		}
	}

	out, err := json.Marshal(project)
	if err != nil {
		return nil, 0, err
	}
	return out, removed, nil
}

// replaceFile writes a sibling temp file and renames it over path.
func replaceFile(path string, write func(io.Writer) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pqhint-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
