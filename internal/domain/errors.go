package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired        = errors.New("authentication required")
	ErrNoData              = errors.New("no report data available")
	ErrUpstreamUnavailable = errors.New("report data unavailable")
	ErrMalformedTable      = errors.New("malformed table")
	ErrTableNotComputed    = errors.New("table not computed")
	ErrDuplicateTable      = errors.New("duplicate table")
	ErrInvalidSheetName    = errors.New("invalid sheet name")
	ErrExport              = errors.New("export failed")
)

// UpstreamError describes a transport or HTTP failure talking to the datastore.
type UpstreamError struct {
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable, e.Detail)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamUnavailable
}

// AssemblyError reports why one table was replaced by a placeholder.
type AssemblyError struct {
	Table string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble table %s: %v", e.Table, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// ExportError aborts a whole workbook export.
type ExportError struct {
	Sheet string
	Err   error
}

func (e *ExportError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s: %v", ErrExport, e.Err)
	}
	return fmt.Sprintf("%s: sheet %s: %v", ErrExport, e.Sheet, e.Err)
}

// Unwrap exposes both ErrExport and the underlying cause to errors.Is.
func (e *ExportError) Unwrap() []error {
	return []error{ErrExport, e.Err}
}
