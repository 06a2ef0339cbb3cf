package report

import (
	"testing"

	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		delimiter string
		want      domain.ColumnDescriptor
	}{
		{"Plain", "Screening Site", ": ", domain.Single("Screening Site", "Screening Site")},
		{"Grouped", "Surgery: Knee", ": ", domain.Grouped("Surgery: Knee", "Surgery", "Knee")},
		{"Splits on first delimiter", "A: B: C", ": ", domain.Grouped("A: B: C", "A", "B: C")},
		{"Ungrouped marker", "_Total", ": ", domain.Single("_Total", "Total")},
		{"Marker wins over delimiter", "_Site: A", ": ", domain.Single("_Site: A", "Site: A")},
		{"Empty group", ": Knee", ": ", domain.Single(": Knee", ": Knee")},
		{"Empty sub", "Surgery: ", ": ", domain.Single("Surgery: ", "Surgery: ")},
		{"Custom delimiter", "Surgery|Knee", "|", domain.Grouped("Surgery|Knee", "Surgery", "Knee")},
		{"Default delimiter", "Surgery: Knee", "", domain.Grouped("Surgery: Knee", "Surgery", "Knee")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColumn(tt.label, tt.delimiter))
		})
	}
}

func TestFlattenHeader(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		delimiter string
		want      string
	}{
		{"Plain", "% Enrolled", ": ", "% Enrolled"},
		{"Grouped already normalised", "Surgery: Knee", ": ", "Surgery: Knee"},
		{"Ungrouped marker stripped", "_Total", ": ", "Total"},
		{"Only leading marker stripped", "_days_since", "_", "days_since"},
		{"Legacy underscore delimiter", "Surgery_Knee", "_", "Surgery: Knee"},
		{"Pipe delimiter", "Surgery|Knee", "|", "Surgery: Knee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenHeader(tt.id, tt.delimiter))
		})
	}
}

// The flat header of a grouped column must agree with what the screen shows.
func TestFlattenHeaderMatchesDisplay(t *testing.T) {
	for _, label := range []string{"Consented: Knee", "MCC: 1", "Actual: Cumulative"} {
		col := ParseColumn(label, ": ")
		assert.True(t, col.IsGrouped())
		assert.Equal(t, col.Group+": "+col.Sub, FlattenHeader(col.ID, ": "))
		assert.Equal(t, label, FlattenHeader(col.ID, ": "))
	}
}

func TestValidSheetName(t *testing.T) {
	assert.True(t, ValidSheetName("Screened_site"))
	assert.True(t, ValidSheetName("Protocol_Deviations_Description"))
	assert.False(t, ValidSheetName(""))
	assert.False(t, ValidSheetName("Protocol_Deviations_Descriptions"))
	assert.False(t, ValidSheetName("A/B"))
	assert.False(t, ValidSheetName("Sheet[1]"))
	assert.False(t, ValidSheetName("What?"))
	assert.False(t, ValidSheetName("'quoted'"))
}
