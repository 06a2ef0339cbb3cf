package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	layout, err := DefaultLayout()
	require.NoError(t, err)

	assert.Equal(t, ": ", layout.GroupDelimiter)
	assert.Equal(t, []string{
		"table1a", "table1b", "table2a", "table2b", "table3a", "table3b",
		"table4", "table5", "table6", "table7a", "table7b", "table8a", "table8b",
		"sex", "race", "ethnicity", "age",
	}, layout.TableOrder())

	sheets := layout.SheetNames()
	assert.Equal(t, "Screened_site", sheets["table1a"])
	assert.Equal(t, "Protocol_Deviations_Description", sheets["table7b"])
	assert.Equal(t, "Age", sheets["age"])
}

func TestParseLayout_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Empty", ""},
		{"No tables", "group_delimiter: \": \"\ntables: []\n"},
		{"Missing delimiter", "tables:\n  - name: a\n    sheet_name: A\n"},
		{"Sheet name too long", "group_delimiter: \": \"\ntables:\n  - name: a\n    sheet_name: abcdefghijklmnopqrstuvwxyz0123456789\n"},
		{"Forbidden character", "group_delimiter: \": \"\ntables:\n  - name: a\n    sheet_name: \"A/B\"\n"},
		{"Duplicate name", "group_delimiter: \": \"\ntables:\n  - name: a\n    sheet_name: A\n  - name: a\n    sheet_name: B\n"},
		{"Duplicate sheet", "group_delimiter: \": \"\ntables:\n  - name: a\n    sheet_name: A\n  - name: b\n    sheet_name: a\n"},
		{"Unknown pivot source", "group_delimiter: \": \"\ntables:\n  - name: a\n    sheet_name: A\n    pivot:\n      source: visits\n      row_field: x\n      row_label: X\n      column_field: y\n      group_label: Y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestNewReportConfig(t *testing.T) {
	layout, err := DefaultLayout()
	require.NoError(t, err)

	cfg, err := NewReportConfig(&EnvConfig{DATASTORE_URL: "https://datastore.example.org/"}, layout)
	require.NoError(t, err)
	assert.Equal(t, "https://datastore.example.org/api", cfg.BaseURL)
	assert.Len(t, cfg.FixedTableOrder, 17)
	assert.Equal(t, ": ", cfg.GroupDelimiter)

	_, err = NewReportConfig(&EnvConfig{DATASTORE_URL: "url not found"}, layout)
	assert.Error(t, err)
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("DATASTORE_URL", "http://localhost:9000")
	t.Setenv("APP_PORT", "9999")

	require.NoError(t, LoadEnvConfig())
	assert.Equal(t, "http://localhost:9000", DefaultEnvConfig.DATASTORE_URL)
	assert.Equal(t, "9999", DefaultEnvConfig.APP_PORT)
	assert.Equal(t, "/", DefaultEnvConfig.REQUESTS_PATHNAME_PREFIX)
	assert.Equal(t, "info", DefaultEnvConfig.LOG_LEVEL)
}
