package services

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains the Prometheus metrics of the volume pipeline.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	FetchTotal       *prometheus.CounterVec // fetches by source and outcome
	RowsSkipped      prometheus.Counter     // malformed rows dropped by the parser
	RendererFailures *prometheus.CounterVec // failed renderers by name
	SortRequests     *prometheus.CounterVec // sort selections by column
	ActiveSessions   prometheus.Gauge       // connected sort sessions
}

// NewPipelineMetrics creates the metrics and registers them with registry
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskpanel_volume_fetch_total",
			Help: "Volume fetches by data source and outcome",
		},
		[]string{"source", "outcome"}, // outcome: success, error
	)

	m.RowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "diskpanel_volume_rows_skipped_total",
			Help: "Query output rows dropped because they were malformed or had no capacity",
		},
	)

	m.RendererFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskpanel_renderer_failures_total",
			Help: "Presentation renderers that returned an error or panicked",
		},
		[]string{"renderer"},
	)

	m.SortRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diskpanel_table_sort_requests_total",
			Help: "Table sort selections by column",
		},
		[]string{"key"},
	)

	m.ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "diskpanel_sort_sessions_active",
			Help: "Currently connected table sort sessions",
		},
	)
}

// Describe implements prometheus.Collector
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.FetchTotal.Describe(ch)
	m.RowsSkipped.Describe(ch)
	m.RendererFailures.Describe(ch)
	m.SortRequests.Describe(ch)
	m.ActiveSessions.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.FetchTotal.Collect(ch)
	m.RowsSkipped.Collect(ch)
	m.RendererFailures.Collect(ch)
	m.SortRequests.Collect(ch)
	m.ActiveSessions.Collect(ch)
}

func (m *PipelineMetrics) recordFetch(source string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.FetchTotal.WithLabelValues(source, outcome).Inc()
}

func (m *PipelineMetrics) recordSkippedRows(n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsSkipped.Add(float64(n))
}

func (m *PipelineMetrics) recordRendererFailure(renderer string) {
	if m == nil {
		return
	}
	m.RendererFailures.WithLabelValues(renderer).Inc()
}

func (m *PipelineMetrics) recordSort(key string) {
	if m == nil {
		return
	}
	m.SortRequests.WithLabelValues(key).Inc()
}

func (m *PipelineMetrics) sessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *PipelineMetrics) sessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}
