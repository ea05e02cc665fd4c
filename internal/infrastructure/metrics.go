package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded for every pipeline run
type PipelineMetrics struct {
	RunsTotal          metric.Int64Counter
	RunFailures        metric.Int64Counter
	RunDuration        metric.Float64Histogram
	RowsExtracted      metric.Int64Counter
	RowsSkipped        metric.Int64Counter
	ObservationsTotal  metric.Int64Counter
	CellsSkipped       metric.Int64Counter
	HTTPRequestsTotal  metric.Int64Counter
	HTTPRequestLatency metric.Float64Histogram
}

// CreatePipelineMetrics creates application-specific metrics
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs"),
	); err != nil {
		return nil, err
	}

	if m.RunFailures, err = meter.Int64Counter(
		"pipeline_failures_total",
		metric.WithDescription("Total number of pipeline runs aborted by an error"),
	); err != nil {
		return nil, err
	}

	if m.RunDuration, err = meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.RowsExtracted, err = meter.Int64Counter(
		"pipeline_rows_extracted_total",
		metric.WithDescription("Rows turned into people"),
	); err != nil {
		return nil, err
	}

	if m.RowsSkipped, err = meter.Int64Counter(
		"pipeline_rows_skipped_total",
		metric.WithDescription("Rows skipped because an identity column was empty"),
	); err != nil {
		return nil, err
	}

	if m.ObservationsTotal, err = meter.Int64Counter(
		"pipeline_observations_total",
		metric.WithDescription("Height observations extracted"),
	); err != nil {
		return nil, err
	}

	if m.CellsSkipped, err = meter.Int64Counter(
		"pipeline_cells_skipped_total",
		metric.WithDescription("Empty measurement cells"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestLatency, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records the outcome of a single pipeline run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
		m.RunFailures.Add(ctx, 1)
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordExtraction records row and cell counters for a run
func (m *PipelineMetrics) RecordExtraction(ctx context.Context, rows, skippedRows, observations, skippedCells int) {
	if m == nil {
		return
	}
	m.RowsExtracted.Add(ctx, int64(rows))
	m.RowsSkipped.Add(ctx, int64(skippedRows))
	m.ObservationsTotal.Add(ctx, int64(observations))
	m.CellsSkipped.Add(ctx, int64(skippedCells))
}

// RecordHTTPRequest records a completed HTTP request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestLatency.Record(ctx, duration.Seconds(), attrs)
}
