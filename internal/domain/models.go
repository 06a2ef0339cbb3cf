package domain

import (
	"encoding/json"
	"time"
)

// ==================== REPORT TABLES ====================

// NoDataColumn is the header written for tables that carry no rows.
const NoDataColumn = "No data for this table"

// ColumnKind tags a ColumnDescriptor variant.
type ColumnKind int

const (
	ColumnSingle ColumnKind = iota
	ColumnGrouped
)

// ColumnDescriptor describes one display column. Single columns only carry a
// Label; Grouped columns carry the Group shown once in a merged header above
// the Sub label.
type ColumnDescriptor struct {
	ID    string
	Kind  ColumnKind
	Label string
	Group string
	Sub   string
}

// Single builds an ungrouped column.
func Single(id, label string) ColumnDescriptor {
	return ColumnDescriptor{ID: id, Kind: ColumnSingle, Label: label}
}

// Grouped builds a column under a two-level header.
func Grouped(id, group, sub string) ColumnDescriptor {
	return ColumnDescriptor{ID: id, Kind: ColumnGrouped, Group: group, Sub: sub}
}

// IsGrouped reports whether the column sits under a group header.
func (c ColumnDescriptor) IsGrouped() bool {
	return c.Kind == ColumnGrouped
}

// DisplayName returns the label shown in the column's own header cell.
func (c ColumnDescriptor) DisplayName() string {
	if c.IsGrouped() {
		return c.Sub
	}
	return c.Label
}

// MarshalJSON emits the shape expected by grouped-column table widgets:
// a plain name for single columns, a [group, sub] pair otherwise.
func (c ColumnDescriptor) MarshalJSON() ([]byte, error) {
	var name interface{} = c.Label
	if c.IsGrouped() {
		name = []string{c.Group, c.Sub}
	}
	return json.Marshal(struct {
		Name interface{} `json:"name"`
		ID   string      `json:"id"`
	}{Name: name, ID: c.ID})
}

// Record is one table row keyed by column identifier.
type Record map[string]interface{}

// GroupHeader is a merged header cell spanning adjacent columns of one group.
type GroupHeader struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	Span  int    `json:"span"`
}

// TableSpec is one named report table.
type TableSpec struct {
	Name        string             `json:"-"`
	SheetName   string             `json:"excel_sheet_name"`
	Title       string             `json:"title,omitempty"`
	Columns     []ColumnDescriptor `json:"columns_list"`
	Rows        []Record           `json:"data"`
	Placeholder bool               `json:"placeholder,omitempty"`
}

// ColumnIDs returns the flat identifier list in column order.
func (t *TableSpec) ColumnIDs() []string {
	ids := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		ids[i] = col.ID
	}
	return ids
}

// HasGroups reports whether any column is grouped.
func (t *TableSpec) HasGroups() bool {
	for _, col := range t.Columns {
		if col.IsGrouped() {
			return true
		}
	}
	return false
}

// GroupHeaders returns the header spans in column order. Single columns
// span only themselves and carry their own label.
func (t *TableSpec) GroupHeaders() []GroupHeader {
	var headers []GroupHeader
	for i, col := range t.Columns {
		if col.IsGrouped() && len(headers) > 0 {
			last := &headers[len(headers)-1]
			prev := t.Columns[i-1]
			if prev.IsGrouped() && prev.Group == col.Group {
				last.Span++
				continue
			}
		}
		label := col.Label
		if col.IsGrouped() {
			label = col.Group
		}
		headers = append(headers, GroupHeader{Label: label, Start: i, Span: 1})
	}
	return headers
}

// MarshalJSON adds the group spans to the renderer payload.
func (t *TableSpec) MarshalJSON() ([]byte, error) {
	type alias TableSpec
	rows := t.Rows
	if rows == nil {
		rows = []Record{}
	}
	return json.Marshal(struct {
		*alias
		Rows         []Record      `json:"data"`
		GroupHeaders []GroupHeader `json:"group_headers"`
	}{alias: (*alias)(t), Rows: rows, GroupHeaders: t.GroupHeaders()})
}

// TableRegistry holds every table of one report generation. It is built by
// the assembler and never modified afterwards.
type TableRegistry struct {
	tables map[string]*TableSpec
	order  []string
}

// NewTableRegistry builds a registry from specs, keeping their order.
// Callers must ensure names are unique.
func NewTableRegistry(specs []*TableSpec) *TableRegistry {
	r := &TableRegistry{
		tables: make(map[string]*TableSpec, len(specs)),
		order:  make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		r.tables[spec.Name] = spec
		r.order = append(r.order, spec.Name)
	}
	return r
}

// Get returns the named table.
func (r *TableRegistry) Get(name string) (*TableSpec, bool) {
	if r == nil {
		return nil, false
	}
	spec, ok := r.tables[name]
	return spec, ok
}

// Names returns table names in assembly order.
func (r *TableRegistry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of tables.
func (r *TableRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// MarshalJSON emits the name → table mapping.
func (r *TableRegistry) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.tables)
}

// ==================== REPORT ====================

// ReportMeta carries display-only messages about the report.
type ReportMeta struct {
	GeneratedAt    time.Time `json:"generated_at"`
	ReportDateMsg  string    `json:"report_date_msg"`
	ReportRangeMsg string    `json:"report_range_msg"`
	RangeStart     time.Time `json:"range_start"`
	RangeEnd       time.Time `json:"range_end"`
}

// Report is one fully assembled report view.
type Report struct {
	Meta     ReportMeta     `json:"meta"`
	Order    []string       `json:"order"`
	Registry *TableRegistry `json:"tables"`
}

// RawTable is a computed table as produced by a TableBuilder, before
// assembly. Columns hold composite labels such as "Surgery: Knee".
type RawTable struct {
	Name      string
	SheetName string
	Title     string
	Columns   []string
	Rows      []Record
	Err       error
}

// ==================== UPSTREAM ====================

// SubjectsPayload is the data object returned by the subjects endpoint.
type SubjectsPayload struct {
	SubjectsCleaned []Record `json:"subjects_cleaned"`
	AdverseEvents   []Record `json:"adverse_events"`
	Consented       []Record `json:"consented"`
}

// Source returns the record list named by an upstream key.
func (p *SubjectsPayload) Source(name string) ([]Record, bool) {
	if p == nil {
		return nil, false
	}
	switch name {
	case "subjects_cleaned":
		return p.SubjectsCleaned, true
	case "adverse_events":
		return p.AdverseEvents, true
	case "consented":
		return p.Consented, true
	}
	return nil, false
}
