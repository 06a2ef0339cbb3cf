package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/locvowork/enrollment_report/internal/config"
	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/locvowork/enrollment_report/internal/report"
)

const (
	pivotTotalLabel   = "Total"
	pivotAllRowLabel  = "All"
	pivotUnknownValue = "Unknown"
)

// PivotTableBuilder is the default TableBuilder. It cross-tabulates record
// counts for every table whose layout carries a pivot block; the remaining
// tables are reported as not computed.
type PivotTableBuilder struct {
	tables    []config.TableLayout
	delimiter string
}

// NewPivotTableBuilder creates a builder for the given layouts.
func NewPivotTableBuilder(tables []config.TableLayout, delimiter string) *PivotTableBuilder {
	if delimiter == "" {
		delimiter = report.DefaultGroupDelimiter
	}
	return &PivotTableBuilder{tables: tables, delimiter: delimiter}
}

// Build implements domain.TableBuilder.
func (b *PivotTableBuilder) Build(ctx context.Context, payload *domain.SubjectsPayload, meta domain.ReportMeta) []domain.RawTable {
	out := make([]domain.RawTable, 0, len(b.tables))
	for _, layout := range b.tables {
		raw := domain.RawTable{
			Name:      layout.Name,
			SheetName: layout.SheetName,
			Title:     layout.Title,
		}
		switch {
		case layout.Pivot == nil:
			raw.Err = domain.ErrTableNotComputed
		default:
			records, ok := payload.Source(layout.Pivot.Source)
			if !ok {
				raw.Err = fmt.Errorf("%w: unknown source %q", domain.ErrTableNotComputed, layout.Pivot.Source)
				break
			}
			raw.Columns, raw.Rows = b.pivot(records, layout.Pivot)
		}
		out = append(out, raw)
	}
	return out
}

// pivot counts records by row and column value. Values keep their order of
// first appearance; a final row sums every column.
func (b *PivotTableBuilder) pivot(records []domain.Record, p *config.PivotLayout) ([]string, []domain.Record) {
	rowKey := report.UngroupedMarker + p.RowLabel
	totalKey := report.UngroupedMarker + pivotTotalLabel

	var rowVals, colVals []string
	seenRow := map[string]bool{}
	seenCol := map[string]bool{}
	counts := map[string]map[string]int{}

	for _, rec := range records {
		rv := valueLabel(rec[p.RowField])
		cv := valueLabel(rec[p.ColumnField])
		if !seenRow[rv] {
			seenRow[rv] = true
			rowVals = append(rowVals, rv)
			counts[rv] = map[string]int{}
		}
		if !seenCol[cv] {
			seenCol[cv] = true
			colVals = append(colVals, cv)
		}
		counts[rv][cv]++
	}

	columns := make([]string, 0, len(colVals)+2)
	columns = append(columns, rowKey)
	colKeys := make([]string, len(colVals))
	for i, cv := range colVals {
		colKeys[i] = p.GroupLabel + b.delimiter + cv
		columns = append(columns, colKeys[i])
	}
	columns = append(columns, totalKey)

	if len(rowVals) == 0 {
		return columns, []domain.Record{}
	}

	rows := make([]domain.Record, 0, len(rowVals)+1)
	all := domain.Record{rowKey: pivotAllRowLabel}
	grand := 0
	for _, rv := range rowVals {
		row := domain.Record{rowKey: rv}
		total := 0
		for i, cv := range colVals {
			n := counts[rv][cv]
			row[colKeys[i]] = n
			total += n
			sum, _ := all[colKeys[i]].(int)
			all[colKeys[i]] = sum + n
		}
		row[totalKey] = total
		grand += total
		rows = append(rows, row)
	}
	all[totalKey] = grand
	rows = append(rows, all)

	return columns, rows
}

func valueLabel(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return pivotUnknownValue
	case string:
		if strings.TrimSpace(val) == "" {
			return pivotUnknownValue
		}
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return strconv.FormatFloat(val, 'f', 2, 64)
	}
	return fmt.Sprint(v)
}
