package letter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

// Writer stores letters under a directory as <slug>.letter.md,
// <slug>.guidance.md and <slug>.json.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir}
}

// Files lists what a Write call produced.
type Files struct {
	Letter   string `json:"letter"`
	Guidance string `json:"guidance,omitempty"`
	Record   string `json:"record,omitempty"`
}

// Write stores the letter body, the guidance when present, and record as
// indented JSON when non-nil. The slug is derived from id.
func (w *Writer) Write(id, body, guidance string, record any) (Files, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create output dir: %w", err)
	}

	stem := filepath.Join(w.dir, util.Slug(id))
	files := Files{Letter: stem + ".letter.md"}
	if err := writeFile(files.Letter, []byte(body+"\n")); err != nil {
		return Files{}, err
	}

	if guidance != "" {
		files.Guidance = stem + ".guidance.md"
		if err := writeFile(files.Guidance, []byte(guidance+"\n")); err != nil {
			return Files{}, err
		}
	} else if err := removeStale(stem + ".guidance.md"); err != nil {
		return Files{}, err
	}

	if record != nil {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return Files{}, fmt.Errorf("encode record: %w", err)
		}
		files.Record = stem + ".json"
		if err := writeFile(files.Record, append(data, '\n')); err != nil {
			return Files{}, err
		}
	} else if err := removeStale(stem + ".json"); err != nil {
		return Files{}, err
	}

	return files, nil
}

// removeStale deletes an output an earlier run left for the same id.
func removeStale(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".letter-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
