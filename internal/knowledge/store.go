// Package knowledge provides the static denial-code lookup table and the
// regulation and template texts that the analysis stages quote from.
package knowledge

import (
	"sort"
	"strings"
)

// SuccessRate is the historical appeal success tag of a denial code.
type SuccessRate string

const (
	SuccessHigh    SuccessRate = "High"
	SuccessMedium  SuccessRate = "Medium"
	SuccessLow     SuccessRate = "Low"
	SuccessUnknown SuccessRate = "Unknown"
)

// ParseSuccessRate maps a table value onto a SuccessRate, case-insensitively.
func ParseSuccessRate(s string) SuccessRate {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SuccessHigh
	case "medium":
		return SuccessMedium
	case "low":
		return SuccessLow
	}
	return SuccessUnknown
}

// Record describes one denial code.
type Record struct {
	Code              string      `json:"code"`
	Description       string      `json:"description"`
	Category          string      `json:"category,omitempty"`
	SuccessRate       SuccessRate `json:"success_rate"`
	CommonCauses      []string    `json:"common_causes,omitempty"`
	AppealGrounds     []string    `json:"appeal_grounds,omitempty"`
	RequiredDocuments []string    `json:"required_documents,omitempty"`
}

// Category groups related codes and carries strategies shared by all of them.
type Category struct {
	Name                   string   `json:"category_name"`
	Description            string   `json:"description,omitempty"`
	Codes                  []string `json:"codes"`
	CommonAppealStrategies []string `json:"common_appeal_strategies,omitempty"`
}

// Contains reports whether code belongs to the category.
func (c Category) Contains(code string) bool {
	for _, member := range c.Codes {
		if member == code {
			return true
		}
	}
	return false
}

// Store is an immutable code table. It is safe for concurrent reads.
type Store struct {
	codes      map[string]Record
	categories []Category
	schema     Schema
}

// NewStore builds a store from canonical records and categories.
// Codes are normalized and categories keep the order given.
func NewStore(records []Record, categories []Category) *Store {
	s := &Store{
		codes:  make(map[string]Record, len(records)),
		schema: SchemaCurrent,
	}
	for _, r := range records {
		r.Code = Normalize(r.Code)
		if r.SuccessRate == "" {
			r.SuccessRate = SuccessUnknown
		}
		s.codes[r.Code] = r
	}
	for _, c := range categories {
		members := make([]string, len(c.Codes))
		for i, code := range c.Codes {
			members[i] = Normalize(code)
		}
		c.Codes = members
		s.categories = append(s.categories, c)
	}
	return s
}

// Empty returns a store with no codes.
func Empty() *Store {
	return &Store{codes: map[string]Record{}, schema: SchemaEmpty}
}

// Normalize uppercases and trims a raw code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the record for code.
func (s *Store) Lookup(code string) (Record, bool) {
	r, ok := s.codes[Normalize(code)]
	return r, ok
}

// CategoryOf returns the first category, in table order, listing code.
func (s *Store) CategoryOf(code string) (Category, bool) {
	code = Normalize(code)
	for _, c := range s.categories {
		if c.Contains(code) {
			return c, true
		}
	}
	return Category{}, false
}

// Strategies returns the code's appeal grounds plus its category's common
// strategies, without duplicates, in sorted order.
func (s *Store) Strategies(code string) []string {
	var all []string
	if r, ok := s.Lookup(code); ok {
		all = append(all, r.AppealGrounds...)
	}
	if c, ok := s.CategoryOf(code); ok {
		all = append(all, c.CommonAppealStrategies...)
	}
	return Dedupe(all)
}

// Codes returns every known code in sorted order.
func (s *Store) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for code := range s.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Categories returns the categories in table order.
func (s *Store) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Len returns the number of known codes.
func (s *Store) Len() int {
	return len(s.codes)
}

// Schema reports which table layout the store was loaded from.
func (s *Store) Schema() Schema {
	return s.schema
}

// Dedupe drops blank and repeated strings and sorts the rest.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
