package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func assembleWeekly(t *testing.T) *domain.TableRegistry {
	t.Helper()
	reg, err := NewAssembler(": ").Assemble(context.Background(), weeklyTables())
	require.NoError(t, err)
	return reg
}

func TestExporter_SeventeenSheetsInOrder(t *testing.T) {
	reg := assembleWeekly(t)

	data, err := NewExporter(": ", weeklySheetMap()).Export(context.Background(), reg, weeklyTableNames)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, weeklySheetNames, f.GetSheetList())
}

func TestExporter_OrderIsCallerSupplied(t *testing.T) {
	reg := assembleWeekly(t)
	order := []string{"age", "table1a", "sex"}

	data, err := NewExporter(": ", weeklySheetMap()).Export(context.Background(), reg, order)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Age", "Screened_site", "Gender"}, f.GetSheetList())
}

func TestExporter_EmptyOrderUsesRegistryOrder(t *testing.T) {
	reg := assembleWeekly(t)
	var logs bytes.Buffer
	l := zerolog.New(&logs)
	ctx := l.WithContext(context.Background())

	data, err := NewExporter(": ", weeklySheetMap()).Export(ctx, reg, nil)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, weeklySheetNames, f.GetSheetList())
	assert.Contains(t, logs.String(), "Exported 17 sheets")
}

func TestExporter_FlattenedHeadersAndRows(t *testing.T) {
	reg, err := NewAssembler(": ").Assemble(context.Background(), []domain.RawTable{screenedBySite()})
	require.NoError(t, err)

	data, err := NewExporter(": ", nil).Export(context.Background(), reg, []string{"table1a"})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Screened_site")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Screening Site", "Surgery: Knee", "Surgery: Thoracic", "Consented: Knee", "Consented: Thoracic", "Total"}, rows[0])
	assert.Equal(t, []string{"UC", "10", "4", "3", "1", "14"}, rows[1])
	// nil cells stay blank
	assert.Equal(t, []string{"WU", "7", "", "2", "", "7"}, rows[2])
}

func TestExporter_LegacyDelimiter(t *testing.T) {
	raw := domain.RawTable{
		Name:      "table4",
		SheetName: "Study_Status",
		Columns:   []string{"_Center Name", "Status_Active", "Status_Withdrawn"},
		Rows: []domain.Record{
			{"_Center Name": "UC", "Status_Active": 5, "Status_Withdrawn": 1},
		},
	}
	reg, err := NewAssembler("_").Assemble(context.Background(), []domain.RawTable{raw})
	require.NoError(t, err)

	spec, _ := reg.Get("table4")
	assert.Equal(t, "Status", spec.Columns[1].Group)

	data, err := NewExporter("_", nil).Export(context.Background(), reg, nil)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Study_Status")
	require.NoError(t, err)
	assert.Equal(t, []string{"Center Name", "Status: Active", "Status: Withdrawn"}, rows[0])
}

func TestExporter_EmptyTable(t *testing.T) {
	raw := domain.RawTable{
		Name:      "table6",
		SheetName: "Early_Termination",
		Columns:   []string{"Record ID", "Termination: Date", "Termination: Reason"},
		Rows:      []domain.Record{},
	}
	reg, err := NewAssembler(": ").Assemble(context.Background(), []domain.RawTable{raw})
	require.NoError(t, err)

	data, err := NewExporter(": ", nil).Export(context.Background(), reg, []string{"table6"})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Early_Termination")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"No data for this table"}}, rows)
}

func TestExporter_MissingTable(t *testing.T) {
	reg, err := NewAssembler(": ").Assemble(context.Background(), []domain.RawTable{screenedBySite()})
	require.NoError(t, err)

	data, err := NewExporter(": ", weeklySheetMap()).Export(context.Background(), reg, []string{"table1a", "table7b", "unlisted"})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Screened_site", "Protocol_Deviations_Description", "unlisted"}, f.GetSheetList())

	rows, err := f.GetRows("Protocol_Deviations_Description")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"No data for this table"}}, rows)
}

func TestExporter_ValueTypes(t *testing.T) {
	raw := domain.RawTable{
		Name:      "table7b",
		SheetName: "Protocol_Deviations_Description",
		Columns:   []string{"Count", "Ratio", "Code", "Flag"},
		Rows: []domain.Record{
			{"Count": json.Number("12"), "Ratio": json.Number("0.25"), "Code": "PD-1", "Flag": true},
		},
	}
	reg, err := NewAssembler(": ").Assemble(context.Background(), []domain.RawTable{raw})
	require.NoError(t, err)

	data, err := NewExporter(": ", nil).Export(context.Background(), reg, nil)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Protocol_Deviations_Description")
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "0.25", "PD-1", "TRUE"}, rows[1])
}

func TestExporter_AllOrNothing(t *testing.T) {
	t.Run("Duplicate sheet in order", func(t *testing.T) {
		reg := assembleWeekly(t)
		data, err := NewExporter(": ", weeklySheetMap()).Export(context.Background(), reg, []string{"table1a", "table1b", "table1a"})
		assert.Nil(t, data)

		var exportErr *domain.ExportError
		require.True(t, errors.As(err, &exportErr))
		assert.Equal(t, "Screened_site", exportErr.Sheet)
		assert.ErrorIs(t, err, domain.ErrExport)
	})

	t.Run("Invalid fallback sheet name", func(t *testing.T) {
		reg := assembleWeekly(t)
		data, err := NewExporter(": ", map[string]string{"extra": "Bad/Name"}).Export(context.Background(), reg, []string{"table1a", "extra"})
		assert.Nil(t, data)
		assert.ErrorIs(t, err, domain.ErrInvalidSheetName)
	})

	t.Run("Nothing to export", func(t *testing.T) {
		data, err := NewExporter(": ", nil).Export(context.Background(), nil, nil)
		assert.Nil(t, data)
		assert.ErrorIs(t, err, domain.ErrExport)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		data, err := NewExporter(": ", nil).Export(ctx, assembleWeekly(t), weeklyTableNames)
		assert.Nil(t, data)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExporter_Idempotent(t *testing.T) {
	reg := assembleWeekly(t)
	exp := NewExporter(": ", weeklySheetMap())
	fixed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	exp.now = func() time.Time { return fixed }

	first, err := exp.Export(context.Background(), reg, weeklyTableNames)
	require.NoError(t, err)
	second, err := exp.Export(context.Background(), reg, weeklyTableNames)
	require.NoError(t, err)

	a, b := openWorkbook(t, first), openWorkbook(t, second)
	for _, sheet := range weeklySheetNames {
		rowsA, err := a.GetRows(sheet)
		require.NoError(t, err)
		rowsB, err := b.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, rowsA, rowsB, sheet)
	}

	props, err := a.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "A2CPS Weekly Report", props.Title)
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026_10_14_a2cps_weekly_report_data.xlsx", ExportFilename(now))
}
