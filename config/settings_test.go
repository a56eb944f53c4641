package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFieldNames(t *testing.T) {
	tests := []struct {
		name           string
		settings       ColumnSettings
		expectedErrors int
		description    string
	}{
		{
			name: "minimal valid settings",
			settings: ColumnSettings{
				Name:        "bookmarks_index",
				TargetTable: "Bookmarks",
			},
			expectedErrors: 0,
			description:    "Name and target table are enough",
		},
		{
			name: "comprehensive valid configuration",
			settings: ColumnSettings{
				Name:         "bookmarks_index",
				TargetTable:  "Bookmarks",
				Tokenizer:    "unicode",
				WithPosition: true,
				Sources:      []string{"Bookmarks.title", "Bookmarks.comment"},
			},
			expectedErrors: 0,
			description:    "All fields set to valid values",
		},
		{
			name: "empty name and target",
			settings: ColumnSettings{
				Name:        "  ",
				TargetTable: "",
			},
			expectedErrors: 2,
			description:    "Both required fields are reported",
		},
		{
			name: "qualified name is rejected",
			settings: ColumnSettings{
				Name:        "Lexicon.bookmarks_index",
				TargetTable: "Bookmarks",
			},
			expectedErrors: 1,
			description:    "The table is given separately, not in the name",
		},
		{
			name: "unknown tokenizer",
			settings: ColumnSettings{
				Name:        "bookmarks_index",
				TargetTable: "Bookmarks",
				Tokenizer:   "bigram",
			},
			expectedErrors: 1,
			description:    "Only registered tokenizers are accepted",
		},
		{
			name: "duplicate and unqualified sources",
			settings: ColumnSettings{
				Name:        "bookmarks_index",
				TargetTable: "Bookmarks",
				Sources:     []string{"Bookmarks.title", "Bookmarks.title", "title"},
			},
			expectedErrors: 2,
			description:    "Duplicates and bare column names are both reported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts := tt.settings.ValidateFieldNames()
			assert.Len(t, conflicts, tt.expectedErrors, "%s: %v", tt.description, conflicts)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	settings := ColumnSettings{Name: "bookmarks_index", TargetTable: "Bookmarks"}
	settings.ApplyDefaults()

	assert.Equal(t, "delimit", settings.Tokenizer)
	assert.NotNil(t, settings.Sources)
	assert.False(t, settings.WithPosition)

	settings = ColumnSettings{Tokenizer: "none", Sources: []string{"Bookmarks.title"}}
	settings.ApplyDefaults()
	assert.Equal(t, "none", settings.Tokenizer)
	assert.Equal(t, []string{"Bookmarks.title"}, settings.Sources)
}
