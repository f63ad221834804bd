package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

// Load reads a code table from path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read knowledge table: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

type lazyStore struct {
	once  sync.Once
	store *Store
	err   error
}

var opened sync.Map // absolute path -> *lazyStore

// Open returns the process-wide store for path, loading it on first use.
// Concurrent first callers share a single load.
func Open(path string) (*Store, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	v, _ := opened.LoadOrStore(path, &lazyStore{})
	l := v.(*lazyStore)
	l.once.Do(func() {
		l.store, l.err = Load(path)
	})
	return l.store, l.err
}

// Excerpt sizes quoted into stage roles.
const (
	RegulationsExcerpt = 2000
	TemplatesExcerpt   = 3000
)

// Corpus holds the free-text reference documents.
type Corpus struct {
	Regulations string
	Templates   string
}

// RegulationsHead returns the leading part of the regulations text.
func (c Corpus) RegulationsHead() string {
	return util.Truncate(c.Regulations, RegulationsExcerpt)
}

// TemplatesHead returns the leading part of the appeal templates.
func (c Corpus) TemplatesHead() string {
	return util.Truncate(c.Templates, TemplatesExcerpt)
}

// LoadCorpus reads the regulations and templates files. Missing files are
// treated as empty.
func LoadCorpus(regulationsPath, templatesPath string) (Corpus, error) {
	regs, err := readOptional(regulationsPath)
	if err != nil {
		return Corpus{}, err
	}
	tmpl, err := readOptional(templatesPath)
	if err != nil {
		return Corpus{}, err
	}
	return Corpus{Regulations: regs, Templates: tmpl}, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}
