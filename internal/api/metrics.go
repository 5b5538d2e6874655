package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	promNamespace = "idqr"
	promSubsystem = "api"
)

type metrics struct {
	scans        *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	payloadBytes prometheus.Histogram
}

func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &metrics{
		scans: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: promNamespace,
				Subsystem: promSubsystem,
				Name:      "scans_total",
				Help:      "Scanned payloads interpreted, by detected format and outcome",
			},
			[]string{"format", "outcome"},
		),
		rejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: promNamespace,
				Subsystem: promSubsystem,
				Name:      "rejected_requests_total",
				Help:      "Scan requests rejected before interpretation",
			},
			[]string{"code"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: promNamespace,
				Subsystem: promSubsystem,
				Name:      "scan_duration_seconds",
				Help:      "Time spent interpreting one payload",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"format"},
		),
		payloadBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: promNamespace,
				Subsystem: promSubsystem,
				Name:      "payload_bytes",
				Help:      "Size of interpreted payloads",
				Buckets:   prometheus.ExponentialBuckets(64, 2, 9),
			},
		),
	}
}
