package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed report_layout.yaml
var defaultLayoutYAML []byte

// ReportLayout is the table layout of the report: which tables exist, in
// which order they are exported and under which sheet names.
type ReportLayout struct {
	GroupDelimiter string        `yaml:"group_delimiter" validate:"required"`
	Tables         []TableLayout `yaml:"tables" validate:"required,min=1,dive"`
}

// TableLayout describes one report table.
type TableLayout struct {
	Name      string       `yaml:"name" validate:"required"`
	SheetName string       `yaml:"sheet_name" validate:"required,max=31,excludesall=:\\/?*[]"`
	Title     string       `yaml:"title"`
	Pivot     *PivotLayout `yaml:"pivot,omitempty"`
}

// PivotLayout configures the default cross-tab builder for a table.
type PivotLayout struct {
	Source      string `yaml:"source" validate:"required,oneof=subjects_cleaned adverse_events consented"`
	RowField    string `yaml:"row_field" validate:"required"`
	RowLabel    string `yaml:"row_label" validate:"required"`
	ColumnField string `yaml:"column_field" validate:"required"`
	GroupLabel  string `yaml:"group_label" validate:"required"`
}

var validate = validator.New()

// DefaultLayout returns the embedded 17-table weekly report layout.
func DefaultLayout() (*ReportLayout, error) {
	return ParseLayout(defaultLayoutYAML)
}

// LoadLayout reads a layout file, falling back to the embedded default when
// path is empty.
func LoadLayout(path string) (*ReportLayout, error) {
	if path == "" {
		return DefaultLayout()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report layout: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes and validates a YAML layout.
func ParseLayout(data []byte) (*ReportLayout, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("report layout is empty")
	}
	var layout ReportLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("decode report layout: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// Validate checks field constraints and name uniqueness.
func (l *ReportLayout) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid report layout: %w", err)
	}
	names := make(map[string]bool, len(l.Tables))
	sheets := make(map[string]bool, len(l.Tables))
	for _, t := range l.Tables {
		if names[t.Name] {
			return fmt.Errorf("invalid report layout: duplicate table name %q", t.Name)
		}
		// sheet names are case-insensitive in workbooks
		sheet := strings.ToLower(t.SheetName)
		if sheets[sheet] {
			return fmt.Errorf("invalid report layout: duplicate sheet name %q", t.SheetName)
		}
		names[t.Name] = true
		sheets[sheet] = true
	}
	return nil
}

// TableOrder returns table names in export order.
func (l *ReportLayout) TableOrder() []string {
	order := make([]string, len(l.Tables))
	for i, t := range l.Tables {
		order[i] = t.Name
	}
	return order
}

// SheetNames maps table name to sheet name.
func (l *ReportLayout) SheetNames() map[string]string {
	sheets := make(map[string]string, len(l.Tables))
	for _, t := range l.Tables {
		sheets[t.Name] = t.SheetName
	}
	return sheets
}

func apiRoot(datastoreURL string) (string, error) {
	u, err := url.Parse(datastoreURL)
	if err != nil {
		return "", fmt.Errorf("parse DATASTORE_URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("DATASTORE_URL must be an absolute URL, got %q", datastoreURL)
	}
	return u.JoinPath("api").String(), nil
}
