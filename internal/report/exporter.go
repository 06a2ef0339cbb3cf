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
	"github.com/xuri/excelize/v2"
)

const (
	// ContentType is the MIME type of exported workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultSheet     = "Sheet1"
	headerFillColor  = "808080"
	headerFontColor  = "FFFFFF"
	minColumnWidth   = 10
	maxColumnWidth   = 60
	workbookTitle    = "A2CPS Weekly Report"
	filenameSuffix   = "_a2cps_weekly_report_data.xlsx"
	filenameDatefmt  = "2006_01_02"
	docPropTimestamp = "2006-01-02T15:04:05Z"
)

// ExportFilename is the download name of a workbook generated at now.
func ExportFilename(now time.Time) string {
	return now.Format(filenameDatefmt) + filenameSuffix
}

// Exporter renders a TableRegistry to a multi-sheet workbook.
type Exporter struct {
	delimiter  string
	sheetNames map[string]string
	now        func() time.Time
}

// NewExporter creates an exporter. sheetNames supplies sheet names for
// tables missing from a registry.
func NewExporter(delimiter string, sheetNames map[string]string) *Exporter {
	if delimiter == "" {
		delimiter = DefaultGroupDelimiter
	}
	return &Exporter{
		delimiter:  delimiter,
		sheetNames: sheetNames,
		now:        time.Now,
	}
}

// Export writes one sheet per name in order and returns the workbook bytes.
// Either every sheet is written or an *domain.ExportError is returned with
// no bytes.
func (e *Exporter) Export(ctx context.Context, registry *domain.TableRegistry, order []string) ([]byte, error) {
	if len(order) == 0 {
		order = registry.Names()
	}
	data, err := e.export(ctx, registry, order)
	if err != nil {
		metrics.Exports.WithLabelValues("failure").Inc()
		logger.ErrorLog(ctx, err, "Spreadsheet export failed")
		return nil, err
	}
	metrics.Exports.WithLabelValues("success").Inc()
	logger.InfoLog(ctx, "Exported %d sheets (%d bytes)", len(order), len(data))
	return data, nil
}

func (e *Exporter) export(ctx context.Context, registry *domain.TableRegistry, order []string) ([]byte, error) {
	if len(order) == 0 {
		return nil, &domain.ExportError{Err: fmt.Errorf("no tables to export")}
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: headerFontColor},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{headerFillColor},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, &domain.ExportError{Err: fmt.Errorf("create header style: %w", err)}
	}

	used := make(map[string]bool, len(order))
	for i, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, &domain.ExportError{Err: err}
		}

		spec := e.resolve(registry, name)
		sheet := spec.SheetName
		if !ValidSheetName(sheet) {
			return nil, &domain.ExportError{Sheet: sheet, Err: fmt.Errorf("%w for table %s", domain.ErrInvalidSheetName, name)}
		}
		key := strings.ToLower(sheet)
		if used[key] {
			return nil, &domain.ExportError{Sheet: sheet, Err: fmt.Errorf("%w: sheet already written", domain.ErrDuplicateTable)}
		}
		used[key] = true

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, &domain.ExportError{Sheet: sheet, Err: err}
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, &domain.ExportError{Sheet: sheet, Err: err}
		}

		if err := e.writeSheet(f, sheet, spec, headerStyle); err != nil {
			return nil, &domain.ExportError{Sheet: sheet, Err: err}
		}
	}
	f.SetActiveSheet(0)

	now := e.now().UTC()
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       workbookTitle,
		Description: fmt.Sprintf("Generated %s", now.Format(time.RFC1123)),
		Created:     now.Format(docPropTimestamp),
		Modified:    now.Format(docPropTimestamp),
	}); err != nil {
		return nil, &domain.ExportError{Err: fmt.Errorf("set document properties: %w", err)}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &domain.ExportError{Err: fmt.Errorf("write workbook: %w", err)}
	}
	return buf.Bytes(), nil
}

// resolve returns the table to write for name. Tables not in the registry
// are written as empty tables.
func (e *Exporter) resolve(registry *domain.TableRegistry, name string) *domain.TableSpec {
	if spec, ok := registry.Get(name); ok {
		return spec
	}
	sheet, ok := e.sheetNames[name]
	if !ok {
		sheet = name
	}
	return &domain.TableSpec{Name: name, SheetName: sheet}
}

// FlatHeaders returns the spreadsheet header row of a table.
func (e *Exporter) FlatHeaders(spec *domain.TableSpec) []string {
	if len(spec.Rows) == 0 {
		return []string{domain.NoDataColumn}
	}
	headers := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		headers[i] = FlattenHeader(col.ID, e.delimiter)
	}
	return headers
}

func (e *Exporter) writeSheet(f *excelize.File, sheet string, spec *domain.TableSpec, headerStyle int) error {
	headers := e.FlatHeaders(spec)
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header %q: %w", header, err)
		}
		if err := f.SetColWidth(sheet, colName(i+1), colName(i+1), columnWidth(header)); err != nil {
			return err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	// a table without rows only carries the placeholder header
	if len(spec.Rows) == 0 {
		return nil
	}

	for r, row := range spec.Rows {
		for c, col := range spec.Columns {
			val, ok := row[col.ID]
			if !ok {
				return fmt.Errorf("row %d missing column %q", r, col.ID)
			}
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(val)); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	return nil
}

func cellValue(v interface{}) interface{} {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if fl, err := n.Float64(); err == nil {
			return fl
		}
		return n.String()
	}
	return v
}

func colName(n int) string {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return "A"
	}
	return name
}

func columnWidth(header string) float64 {
	w := float64(len([]rune(header)) + 2)
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}
