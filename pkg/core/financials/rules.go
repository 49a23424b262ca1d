package financials

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed rules.yaml
var rulesYAML []byte

// AliasRule collapses label phrasing variants onto one canonical key.
// Any line whose label starts with Prefix is keyed as Canonical.
type AliasRule struct {
	Prefix    string `yaml:"prefix"`
	Canonical string `yaml:"canonical"`
}

// StatementRules is the per-statement selection table for the legacy
// extractors: which lines to keep, which sub-section headers to track,
// and how to normalize the surviving labels.
type StatementRules struct {
	// FirstItem anchors the scan: lines before its first occurrence are
	// ignored (title block, date header, column captions).
	FirstItem string `yaml:"first_item"`
	// RelevantItems is the enumerated concept set; labels are kept on a
	// prefix match. Anything else is dropped.
	RelevantItems []string `yaml:"relevant_items"`
	// ExcludedItems drops boilerplate that would otherwise pass the filters.
	ExcludedItems []string `yaml:"excluded_items"`
	// AllowedHeaders are colon-terminated sub-section headers that survive
	// the header filter and are tracked as the current parent.
	AllowedHeaders []string `yaml:"allowed_headers"`
	Aliases        []AliasRule `yaml:"aliases"`
	// UnscaledItems are labels whose values never receive the section's
	// monetary scale (share counts, per-share amounts).
	UnscaledItems []string `yaml:"unscaled_items"`
	// ZeroDefaults are concepts recorded as zero when absent from the
	// statement rather than omitted.
	ZeroDefaults []string `yaml:"zero_defaults"`
	// Renames maps an extracted key to its canonical replacement after
	// extraction completes.
	Renames map[string]string `yaml:"renames"`
}

// Relevant reports whether label matches the enumerated concept set.
func (r StatementRules) Relevant(label string) bool {
	return hasAnyPrefix(label, r.RelevantItems)
}

// Excluded reports whether label is named boilerplate.
func (r StatementRules) Excluded(label string) bool {
	for _, e := range r.ExcludedItems {
		if label == e {
			return true
		}
	}
	return false
}

// AllowedHeader reports whether a colon-terminated line is a tracked
// sub-section header rather than a dropped one.
func (r StatementRules) AllowedHeader(line string) bool {
	for _, h := range r.AllowedHeaders {
		if line == h {
			return true
		}
	}
	return false
}

// CanonicalKey applies the alias table to a label.
func (r StatementRules) CanonicalKey(label string) string {
	for _, a := range r.Aliases {
		if strings.HasPrefix(label, a.Prefix) {
			return a.Canonical
		}
	}
	return label
}

// Unscaled reports whether a label's values bypass the section scale.
func (r StatementRules) Unscaled(label string) bool {
	return hasAnyPrefix(label, r.UnscaledItems)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// ruleSet holds the three statement tables loaded from rules.yaml.
type ruleSet struct {
	BalanceSheet    StatementRules `yaml:"balance_sheet"`
	IncomeStatement StatementRules `yaml:"income_statement"`
	CashFlow        StatementRules `yaml:"cash_flow"`
}

var rules ruleSet

func init() {
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		panic(fmt.Sprintf("financials: invalid embedded rules.yaml: %v", err))
	}
}
