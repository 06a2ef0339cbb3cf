// Package metrics exposes Prometheus counters for the report pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report",
		Name:      "fetch_outcomes_total",
		Help:      "Classified results of upstream report data fetches.",
	}, []string{"outcome"})

	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report",
		Name:      "fetch_attempts_total",
		Help:      "Upstream requests issued, split by cache bypass.",
	}, []string{"cache_bypass"})

	TablePlaceholders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report",
		Name:      "table_placeholders_total",
		Help:      "Tables replaced by a no-data placeholder during assembly.",
	}, []string{"table"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report",
		Name:      "exports_total",
		Help:      "Spreadsheet exports by result.",
	}, []string{"result"})
)
