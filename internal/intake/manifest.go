package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case is one claim in a batch manifest.
type Case struct {
	ID          string            `yaml:"id"`
	Document    string            `yaml:"document"`
	Policy      string            `yaml:"policy,omitempty"`
	DenialCodes []string          `yaml:"denial_codes,omitempty"`
	Patient     map[string]string `yaml:"patient,omitempty"`
}

// Manifest lists the cases of a batch run.
type Manifest struct {
	Cases []Case `yaml:"cases"`
}

// LoadManifest reads a YAML manifest. Relative document and policy paths
// resolve against the manifest's directory; cases without an id get one
// from their position.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Cases) == 0 {
		return nil, fmt.Errorf("manifest %s lists no cases", filepath.Base(path))
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool, len(m.Cases))
	for i := range m.Cases {
		c := &m.Cases[i]
		if strings.TrimSpace(c.Document) == "" {
			return nil, fmt.Errorf("manifest case %d has no document", i+1)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("case-%03d", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("manifest case id %q is repeated", c.ID)
		}
		seen[c.ID] = true
		c.Document = resolve(base, c.Document)
		c.Policy = resolve(base, c.Policy)
	}
	return &m, nil
}

func resolve(base, p string) string {
	if p == "" || IsURL(p) || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
