package service

import (
	"fmt"
	"time"

	"github.com/locvowork/enrollment_report/internal/domain"
)

// reportingPeriodDays is the length of the weekly reporting window.
const reportingPeriodDays = 7

// NewReportMeta builds the display messages for a report generated at now.
// The reporting period is the seven days before the report date.
func NewReportMeta(now time.Time) domain.ReportMeta {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, -1)
	start := today.AddDate(0, 0, -reportingPeriodDays)

	return domain.ReportMeta{
		GeneratedAt:    now,
		ReportDateMsg:  "Report Date: " + today.Format("Monday, January 2, 2006"),
		ReportRangeMsg: fmt.Sprintf("Reporting Period: %s - %s", start.Format("01/02/2006"), end.Format("01/02/2006")),
		RangeStart:     start,
		RangeEnd:       end,
	}
}
