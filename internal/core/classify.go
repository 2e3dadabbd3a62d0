package core

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Rule maps a lower-case substring key to a category.
type Rule struct {
	Match    string   `json:"match"`
	Category Category `json:"category"`
}

// Table is an ordered list of classification rules. Order is part of the
// configuration contract: Classify returns the category of the first rule
// whose key appears in the vendor name, not the longest or most specific
// match. Tables are immutable once built.
type Table struct {
	rules []Rule
}

// NewTable builds a Table from rules, validating keys and categories.
// Keys are lower-cased so matching is case-insensitive.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("classification table is empty")
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		key := strings.ToLower(strings.TrimSpace(r.Match))
		if key == "" {
			return nil, fmt.Errorf("rule %d: empty match key", i)
		}
		if !r.Category.IsValid() {
			return nil, fmt.Errorf("rule %d (%q): unknown category %q", i, r.Match, r.Category)
		}
		out[i] = Rule{Match: key, Category: r.Category}
	}
	return &Table{rules: out}, nil
}

// LoadTable reads an ordered rule list from a JSON file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classification rules: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse classification rules %s: %w", path, err)
	}
	t, err := NewTable(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid classification rules %s: %w", path, err)
	}
	return t, nil
}

// Classify maps a vendor name to its category. An empty or unmatched
// vendor yields Other. It never fails.
func (t *Table) Classify(vendor string) Category {
	if vendor == "" {
		return Other
	}
	l := strings.ToLower(vendor)
	for _, r := range t.rules {
		if strings.Contains(l, r.Match) {
			return r.Category
		}
	}
	return Other
}

// Rules returns a copy of the ordered rule list.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// DefaultTable returns the built-in vendor table. The order below is the
// matching order and is deliberate; do not sort.
func DefaultTable() *Table {
	t, err := NewTable([]Rule{
		{"swiggy", Food}, {"zomato", Food}, {"dominos", Food}, {"mcdonald", Food},
		{"kfc", Food}, {"subway", Food}, {"starbucks", Food}, {"dunkin", Food}, {"burger", Food},
		{"uber", Transport}, {"ola", Transport}, {"rapido", Transport}, {"irctc", Transport},
		{"makemytrip", Travel}, {"airbnb", Travel}, {"oyo", Travel}, {"booking", Travel}, {"goibibo", Travel},
		{"netflix", Entertainment}, {"spotify", Entertainment}, {"hotstar", Entertainment}, {"prime", Entertainment},
		{"amazon", Shopping}, {"flipkart", Shopping}, {"myntra", Shopping}, {"ajio", Shopping}, {"nykaa", Shopping},
		{"apollo", Health}, {"practo", Health}, {"medplus", Health}, {"pharmeasy", Health},
		{"byjus", Education}, {"coursera", Education}, {"udemy", Education}, {"unacademy", Education},
		{"jio", Utilities}, {"airtel", Utilities}, {"bsnl", Utilities},
	})
	if err != nil {
		panic(err) // built-in table must be valid
	}
	return t
}
