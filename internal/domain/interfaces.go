package domain

import (
	"context"
	"net/http"
)

// SubjectsFetcher retrieves report data from the upstream datastore.
type SubjectsFetcher interface {
	SubjectsEndpoint() string
	Fetch(ctx context.Context, endpoint string, cookies []*http.Cookie) FetchOutcome
}

// TableBuilder computes the report tables from raw upstream records.
// A table that cannot be computed is returned with Err set.
type TableBuilder interface {
	Build(ctx context.Context, payload *SubjectsPayload, meta ReportMeta) []RawTable
}
