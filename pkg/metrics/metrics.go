// Package metrics provides Prometheus metrics for codec activity. All
// metrics are registered on the default registry at package init and are
// safe for concurrent use. Writers and readers record per-type counts;
// nothing here is on the per-value hot path except counter increments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "axcol"

var (
	// ValuesWritten counts logical values committed to column files,
	// default substitutions included.
	ValuesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_written_total",
			Help:      "Total logical values written to column files",
		},
		[]string{"type"},
	)

	// ValuesDropped counts values routed away by a writer hashfilter.
	ValuesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_dropped_total",
			Help:      "Total values dropped by writer slice filtering",
		},
		[]string{"type"},
	)

	// ValuesDefaulted counts rejected values replaced by the configured
	// default.
	ValuesDefaulted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_defaulted_total",
			Help:      "Total rejected values replaced by the configured default",
		},
		[]string{"type"},
	)

	// ValuesRead counts values yielded by readers after slice masking.
	ValuesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_read_total",
			Help:      "Total values yielded by column readers",
		},
		[]string{"type"},
	)

	// BlocksFlushed counts compressed blocks written to disk.
	BlocksFlushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_flushed_total",
			Help:      "Total compressed blocks flushed to column files",
		},
		[]string{"type"},
	)

	// BytesCompressed counts on-disk bytes produced, frame headers
	// included.
	BytesCompressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_compressed_total",
			Help:      "Total compressed bytes written to column files",
		},
		[]string{"type"},
	)
)
