package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/locvowork/enrollment_report/internal/logger"
	"github.com/locvowork/enrollment_report/internal/metrics"
)

// Assembler turns computed tables into a TableRegistry.
type Assembler struct {
	delimiter string
}

// NewAssembler creates an assembler splitting composite labels on delimiter.
func NewAssembler(delimiter string) *Assembler {
	if delimiter == "" {
		delimiter = DefaultGroupDelimiter
	}
	return &Assembler{delimiter: delimiter}
}

// Delimiter returns the group delimiter in use.
func (a *Assembler) Delimiter() string {
	return a.delimiter
}

// Assemble builds the registry. A malformed table is replaced by a no-data
// placeholder and the rest proceed; duplicate names or sheet names and
// invalid sheet names refuse the whole assembly.
func (a *Assembler) Assemble(ctx context.Context, tables []domain.RawTable) (*domain.TableRegistry, error) {
	if err := checkNames(tables); err != nil {
		return nil, err
	}

	specs := make([]*domain.TableSpec, 0, len(tables))
	for _, raw := range tables {
		spec, err := a.assembleTable(raw)
		if err != nil {
			logger.WarnLog(ctx, err, "Replacing table %s with placeholder", raw.Name)
			metrics.TablePlaceholders.WithLabelValues(raw.Name).Inc()
			spec = Placeholder(raw.Name, raw.SheetName, raw.Title)
		}
		specs = append(specs, spec)
	}
	return domain.NewTableRegistry(specs), nil
}

// Placeholder returns the single-column, zero-row table used when a table
// has no usable data.
func Placeholder(name, sheetName, title string) *domain.TableSpec {
	return &domain.TableSpec{
		Name:        name,
		SheetName:   sheetName,
		Title:       title,
		Columns:     []domain.ColumnDescriptor{domain.Single(domain.NoDataColumn, domain.NoDataColumn)},
		Rows:        []domain.Record{},
		Placeholder: true,
	}
}

func checkNames(tables []domain.RawTable) error {
	names := make(map[string]bool, len(tables))
	sheets := make(map[string]bool, len(tables))
	for _, t := range tables {
		if t.Name == "" {
			return fmt.Errorf("%w: table without a name", domain.ErrMalformedTable)
		}
		if names[t.Name] {
			return fmt.Errorf("%w: name %q", domain.ErrDuplicateTable, t.Name)
		}
		if !ValidSheetName(t.SheetName) {
			return fmt.Errorf("%w: %q for table %s", domain.ErrInvalidSheetName, t.SheetName, t.Name)
		}
		sheet := strings.ToLower(t.SheetName)
		if sheets[sheet] {
			return fmt.Errorf("%w: sheet name %q", domain.ErrDuplicateTable, t.SheetName)
		}
		names[t.Name] = true
		sheets[sheet] = true
	}
	return nil
}

func (a *Assembler) assembleTable(raw domain.RawTable) (*domain.TableSpec, error) {
	fail := func(format string, args ...interface{}) (*domain.TableSpec, error) {
		return nil, &domain.AssemblyError{
			Table: raw.Name,
			Err:   fmt.Errorf("%w: %s", domain.ErrMalformedTable, fmt.Sprintf(format, args...)),
		}
	}

	if raw.Err != nil {
		return nil, &domain.AssemblyError{Table: raw.Name, Err: raw.Err}
	}
	if len(raw.Columns) == 0 {
		return fail("no columns")
	}

	columns := make([]domain.ColumnDescriptor, 0, len(raw.Columns))
	seen := make(map[string]bool, len(raw.Columns))
	for _, label := range raw.Columns {
		if label == "" || label == UngroupedMarker {
			return fail("empty column label")
		}
		if seen[label] {
			return fail("duplicate column %q", label)
		}
		seen[label] = true
		columns = append(columns, ParseColumn(label, a.delimiter))
	}

	rows := make([]domain.Record, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		if len(row) != len(seen) {
			return fail("row %d has %d fields, want %d", i, len(row), len(seen))
		}
		record := make(domain.Record, len(row))
		for key, val := range row {
			if !seen[key] {
				return fail("row %d has undeclared column %q", i, key)
			}
			if !isScalar(val) {
				return fail("row %d column %q holds %T", i, key, val)
			}
			record[key] = val
		}
		rows = append(rows, record)
	}

	return &domain.TableSpec{
		Name:      raw.Name,
		SheetName: raw.SheetName,
		Title:     raw.Title,
		Columns:   columns,
		Rows:      rows,
	}, nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool, json.Number, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
