// Package config provides configuration structures for the column index.
// It defines index column settings and the server configuration.
package config

import (
	"strings"

	"github.com/gcbaptista/go-column-index/internal/tokenizer"
)

// ColumnSettings contains the lexicon options of an index column and the
// definition needed to create it.
type ColumnSettings struct {
	Name         string   `json:"name"`              // Column name, unique within its table
	TargetTable  string   `json:"target_table"`      // Table whose rows the index points at
	Tokenizer    string   `json:"tokenizer"`         // Term extraction: "delimit" (default), "delimit_prefix", "unicode" or "none"
	WithPosition bool     `json:"with_position"`     // Keep token positions in postings
	Normalize    bool     `json:"normalize"`         // Lowercase exact keys (tokenizer "none")
	Sources      []string `json:"sources,omitempty"` // Optional initial sources as "Table.column"
}

// ValidateFieldNames validates the settings and returns every problem found.
func (settings *ColumnSettings) ValidateFieldNames() []string {
	var conflicts []string

	if strings.TrimSpace(settings.Name) == "" {
		conflicts = append(conflicts, "Column name cannot be empty or whitespace-only")
	} else if strings.ContainsAny(settings.Name, ". /") {
		conflicts = append(conflicts, "Column name '"+settings.Name+"' must not contain '.', '/' or spaces")
	}
	if strings.TrimSpace(settings.TargetTable) == "" {
		conflicts = append(conflicts, "Target table cannot be empty or whitespace-only")
	}

	if settings.Tokenizer != "" && !knownTokenizer(settings.Tokenizer) {
		conflicts = append(conflicts, "Unknown tokenizer '"+settings.Tokenizer+"' (must be one of: "+strings.Join(tokenizer.Names(), ", ")+")")
	}

	conflicts = append(conflicts, checkDuplicates("sources", settings.Sources)...)
	for _, source := range settings.Sources {
		if !strings.Contains(strings.Trim(source, "."), ".") {
			conflicts = append(conflicts, "Source '"+source+"' must be a qualified 'Table.column' name")
		}
	}

	return conflicts
}

func knownTokenizer(name string) bool {
	for _, known := range tokenizer.Names() {
		if name == known {
			return true
		}
	}
	return false
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, fields []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, field := range fields {
		if seen[field] {
			errors = append(errors, "Duplicate value '"+field+"' found in "+fieldName)
		}
		seen[field] = true
	}

	return errors
}

// ApplyDefaults applies default values to the column settings
func (settings *ColumnSettings) ApplyDefaults() {
	if settings.Tokenizer == "" {
		settings.Tokenizer = tokenizer.NameDelimit
	}
	if settings.Sources == nil {
		settings.Sources = []string{}
	}
}
