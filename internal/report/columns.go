package report

import (
	"strings"

	"github.com/locvowork/enrollment_report/internal/domain"
)

const (
	// DefaultGroupDelimiter separates group and sub-label in composite column labels.
	DefaultGroupDelimiter = ": "
	// UngroupedMarker prefixes labels that belong to no group.
	UngroupedMarker = "_"
	// flatSeparator joins group and sub-label in flat spreadsheet headers.
	flatSeparator = ": "
)

// ParseColumn turns a composite label into a column descriptor. The label
// itself stays the column identifier.
func ParseColumn(label, delimiter string) domain.ColumnDescriptor {
	if delimiter == "" {
		delimiter = DefaultGroupDelimiter
	}
	if strings.HasPrefix(label, UngroupedMarker) {
		return domain.Single(label, strings.TrimPrefix(label, UngroupedMarker))
	}
	group, sub, found := strings.Cut(label, delimiter)
	if !found || group == "" || sub == "" {
		return domain.Single(label, label)
	}
	return domain.Grouped(label, group, sub)
}

// FlattenHeader returns the single-row spreadsheet header for a column
// identifier.
func FlattenHeader(id, delimiter string) string {
	if strings.HasPrefix(id, UngroupedMarker) {
		return strings.TrimPrefix(id, UngroupedMarker)
	}
	if delimiter == "" || delimiter == flatSeparator {
		return id
	}
	return strings.ReplaceAll(id, delimiter, flatSeparator)
}

// sheetNameForbidden are characters a workbook refuses in sheet names.
const sheetNameForbidden = `:\/?*[]`

// maxSheetNameLength is the workbook limit on sheet name length.
const maxSheetNameLength = 31

// ValidSheetName reports whether name can be used as a sheet name.
func ValidSheetName(name string) bool {
	if name == "" || len([]rune(name)) > maxSheetNameLength {
		return false
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return false
	}
	return !strings.ContainsAny(name, sheetNameForbidden)
}
