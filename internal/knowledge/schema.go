package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema identifies the top-level key names a table was written with.
type Schema int

const (
	// SchemaEmpty means no table was found or it held no codes.
	SchemaEmpty Schema = iota
	// SchemaCurrent uses rejection_codes and rejection_categories.
	SchemaCurrent
	// SchemaLegacy uses denial_codes and denial_categories.
	SchemaLegacy
)

func (s Schema) String() string {
	switch s {
	case SchemaCurrent:
		return "current"
	case SchemaLegacy:
		return "legacy"
	}
	return "empty"
}

type rawRecord struct {
	Description       string   `json:"description" yaml:"description"`
	Category          string   `json:"category" yaml:"category"`
	SuccessRate       string   `json:"success_rate" yaml:"success_rate"`
	CommonCauses      []string `json:"common_causes" yaml:"common_causes"`
	AppealGrounds     []string `json:"appeal_grounds" yaml:"appeal_grounds"`
	RequiredDocuments []string `json:"required_documents" yaml:"required_documents"`
}

type rawCategory struct {
	Description            string   `json:"description" yaml:"description"`
	Codes                  []string `json:"codes" yaml:"codes"`
	CommonAppealStrategies []string `json:"common_appeal_strategies" yaml:"common_appeal_strategies"`
}

type namedCategory struct {
	name string
	rawCategory
}

// categoryTable is a category section decoded in file order, so a code
// listed under two categories resolves to the one written first.
type categoryTable []namedCategory

func (t *categoryTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("categories: expected an object")
	}
	var out categoryTable
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var c rawCategory
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		out = append(out, namedCategory{name: name, rawCategory: c})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

func (t *categoryTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("categories: expected a mapping at line %d", node.Line)
	}
	out := make(categoryTable, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var c rawCategory
		if err := node.Content[i+1].Decode(&c); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		out = append(out, namedCategory{name: name, rawCategory: c})
	}
	*t = out
	return nil
}

// rawTable accepts both layouts; resolve picks one per section.
type rawTable struct {
	RejectionCodes      map[string]rawRecord `json:"rejection_codes" yaml:"rejection_codes"`
	RejectionCategories categoryTable        `json:"rejection_categories" yaml:"rejection_categories"`
	DenialCodes         map[string]rawRecord `json:"denial_codes" yaml:"denial_codes"`
	DenialCategories    categoryTable        `json:"denial_categories" yaml:"denial_categories"`
}

// Parse decodes a table. format is a file extension such as ".json" or ".yaml".
func Parse(data []byte, format string) (*Store, error) {
	var raw rawTable
	switch strings.ToLower(format) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse knowledge yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse knowledge json: %w", err)
		}
	}
	return raw.resolve(), nil
}

// resolve prefers the current key for each section and falls back to the
// legacy one when the current section is absent or empty.
func (t rawTable) resolve() *Store {
	codes, schema := t.RejectionCodes, SchemaCurrent
	if len(codes) == 0 {
		codes, schema = t.DenialCodes, SchemaLegacy
	}
	categories := t.RejectionCategories
	if len(categories) == 0 {
		categories = t.DenialCategories
	}
	if len(codes) == 0 {
		schema = SchemaEmpty
	}

	records := make([]Record, 0, len(codes))
	for code, r := range codes {
		records = append(records, Record{
			Code:              code,
			Description:       r.Description,
			Category:          r.Category,
			SuccessRate:       ParseSuccessRate(r.SuccessRate),
			CommonCauses:      r.CommonCauses,
			AppealGrounds:     r.AppealGrounds,
			RequiredDocuments: r.RequiredDocuments,
		})
	}

	cats := make([]Category, 0, len(categories))
	for _, c := range categories {
		cats = append(cats, Category{
			Name:                   c.name,
			Description:            c.Description,
			Codes:                  c.Codes,
			CommonAppealStrategies: c.CommonAppealStrategies,
		})
	}

	store := NewStore(records, cats)
	store.schema = schema
	return store
}
