package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/locvowork/enrollment_report/internal/logger"
	"github.com/locvowork/enrollment_report/internal/report"
)

// ReportService runs the report pipeline for one request: fetch, compute,
// assemble and, on demand, export.
type ReportService struct {
	fetcher    domain.SubjectsFetcher
	builder    domain.TableBuilder
	assembler  *report.Assembler
	exporter   *report.Exporter
	tableOrder []string
	now        func() time.Time
}

// NewReportService creates a new ReportService instance
func NewReportService(
	fetcher domain.SubjectsFetcher,
	builder domain.TableBuilder,
	assembler *report.Assembler,
	exporter *report.Exporter,
	tableOrder []string,
) *ReportService {
	return &ReportService{
		fetcher:    fetcher,
		builder:    builder,
		assembler:  assembler,
		exporter:   exporter,
		tableOrder: tableOrder,
		now:        time.Now,
	}
}

// TableOrder returns the fixed export order.
func (s *ReportService) TableOrder() []string {
	order := make([]string, len(s.tableOrder))
	copy(order, s.tableOrder)
	return order
}

// BuildReport fetches the data and assembles every report table. It returns
// domain.ErrAuthRequired, domain.ErrNoData or a *domain.UpstreamError when
// the fetch does not succeed.
func (s *ReportService) BuildReport(ctx context.Context, cookies []*http.Cookie) (*domain.Report, error) {
	meta := NewReportMeta(s.now())
	endpoint := s.fetcher.SubjectsEndpoint()
	ctx = logger.WithLogger(ctx, map[string]interface{}{"endpoint": endpoint})

	outcome := s.fetcher.Fetch(ctx, endpoint, cookies)
	logger.InfoLog(ctx, "Datastore fetch finished: outcome=%s attempts=%d", outcome.Status, outcome.Attempts)
	if err := outcome.Err(); err != nil {
		return nil, err
	}

	raw := s.builder.Build(ctx, outcome.Payload, meta)
	registry, err := s.assembler.Assemble(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	return &domain.Report{
		Meta:     meta,
		Order:    s.TableOrder(),
		Registry: registry,
	}, nil
}

// ExportReport builds a fresh report and renders it as a workbook.
func (s *ReportService) ExportReport(ctx context.Context, cookies []*http.Cookie) (string, []byte, error) {
	rep, err := s.BuildReport(ctx, cookies)
	if err != nil {
		return "", nil, err
	}

	data, err := s.exporter.Export(ctx, rep.Registry, s.tableOrder)
	if err != nil {
		return "", nil, err
	}
	return report.ExportFilename(rep.Meta.GeneratedAt), data, nil
}
