// Package metrics provides Prometheus metrics for command-line parsing.
// There is no listener: a run writes the default registry to a textfile
// for the node exporter's textfile collector to pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Parsing ────────────────────────────────────────────────────────────────

// ParsesTotal counts command lines parsed, by command root and outcome
// ("done", "help", "error").
var ParsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ai",
	Name:      "parses_total",
	Help:      "Total command lines parsed.",
}, []string{"root", "outcome"})

// ParseErrors counts failed parses by error kind.
var ParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ai",
	Name:      "parse_errors_total",
	Help:      "Total failed parses by error kind.",
}, []string{"kind"})

// ParseLatency tracks the time taken to parse one command line.
var ParseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ai",
	Name:      "parse_latency_seconds",
	Help:      "Time to parse one command line.",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
})

// NamedValues tracks how many named values a parse produced.
var NamedValues = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ai",
	Name:      "named_values",
	Help:      "Named values produced by one parse.",
	Buckets:   prometheus.LinearBuckets(0, 8, 8),
})

// ─── Files ──────────────────────────────────────────────────────────────────

// IncludesTotal counts @file and defaults files read as directive lines.
var IncludesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ai",
	Name:      "includes_total",
	Help:      "Total @file includes read.",
})

// ─── Journal ────────────────────────────────────────────────────────────────

// JournalWrites counts invocation journal writes by result.
var JournalWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ai",
	Name:      "journal_writes_total",
	Help:      "Invocation journal writes.",
}, []string{"result"})

// ObserveParse records one finished parse.
func ObserveParse(root, outcome, errKind string, values int, took time.Duration) {
	if root == "" {
		root = "none"
	}
	ParsesTotal.WithLabelValues(root, outcome).Inc()
	if errKind != "" {
		ParseErrors.WithLabelValues(errKind).Inc()
	}
	NamedValues.Observe(float64(values))
	ParseLatency.Observe(took.Seconds())
}

// OnInclude is a dispatcher include hook that counts includes.
func OnInclude(string) {
	IncludesTotal.Inc()
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
