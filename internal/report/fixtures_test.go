package report

import (
	"fmt"

	"github.com/locvowork/enrollment_report/internal/domain"
)

var weeklyTableNames = []string{
	"table1a", "table1b", "table2a", "table2b", "table3a", "table3b",
	"table4", "table5", "table6", "table7a", "table7b", "table8a", "table8b",
	"sex", "race", "ethnicity", "age",
}

var weeklySheetNames = []string{
	"Screened_site", "Screened_MCC", "Decline_Reasons", "Decline_Comments",
	"Consent_site", "Consent_mcc", "Study_Status", "Rescinded_Consent",
	"Early_Termination", "Protocol_Deviations", "Protocol_Deviations_Description",
	"Adverse_Events", "Adverse_Events_Description", "Gender", "Race", "Ethnicity", "Age",
}

func weeklySheetMap() map[string]string {
	m := make(map[string]string, len(weeklyTableNames))
	for i, name := range weeklyTableNames {
		m[name] = weeklySheetNames[i]
	}
	return m
}

func screenedBySite() domain.RawTable {
	return domain.RawTable{
		Name:      "table1a",
		SheetName: "Screened_site",
		Columns:   []string{"Screening Site", "Surgery: Knee", "Surgery: Thoracic", "Consented: Knee", "Consented: Thoracic", "_Total"},
		Rows: []domain.Record{
			{"Screening Site": "UC", "Surgery: Knee": 10, "Surgery: Thoracic": 4, "Consented: Knee": 3, "Consented: Thoracic": 1, "_Total": 14},
			{"Screening Site": "WU", "Surgery: Knee": 7, "Surgery: Thoracic": nil, "Consented: Knee": 2, "Consented: Thoracic": nil, "_Total": 7},
		},
	}
}

// weeklyTables returns one well-formed table per weekly report table.
func weeklyTables() []domain.RawTable {
	tables := make([]domain.RawTable, len(weeklyTableNames))
	for i, name := range weeklyTableNames {
		tables[i] = domain.RawTable{
			Name:      name,
			SheetName: weeklySheetNames[i],
			Columns:   []string{"Site", "Count: Week", "Count: Total"},
			Rows: []domain.Record{
				{"Site": fmt.Sprintf("site-%d", i), "Count: Week": i, "Count: Total": i * 10},
			},
		}
	}
	tables[0] = screenedBySite()
	return tables
}
