package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Meter name for data-access metrics instrumentation
	dbMeterName = "go-dal/database"

	// Metric names following OpenTelemetry semantic conventions
	metricDBCalls    = "db.client.calls"
	metricDBDuration = "db.client.operation.duration"
	metricDBRows     = "db.client.response.returned_rows"
)

var (
	meterOnce sync.Once

	stmtCounter       metric.Int64Counter
	durationHistogram metric.Float64Histogram
	rowsCounter       metric.Int64Counter
)

// logMetricError logs a metric initialization error to stderr. Metrics are
// best-effort; their failure must never break statement execution.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", metricName, err)
	}
}

func initMetrics() {
	meter := otel.Meter(dbMeterName)

	var err error
	stmtCounter, err = meter.Int64Counter(metricDBCalls,
		metric.WithDescription("Number of statements executed"))
	logMetricError(metricDBCalls, err)

	durationHistogram, err = meter.Float64Histogram(metricDBDuration,
		metric.WithDescription("Statement round-trip duration"),
		metric.WithUnit("ms"))
	logMetricError(metricDBDuration, err)

	rowsCounter, err = meter.Int64Counter(metricDBRows,
		metric.WithDescription("Rows returned or affected by statements"))
	logMetricError(metricDBRows, err)
}

// recordStatement records one statement execution against the global meter.
func recordStatement(ctx context.Context, vendor string, elapsed time.Duration, success bool, rows int64) {
	meterOnce.Do(initMetrics)

	attrs := metric.WithAttributes(
		attribute.String("db.system", vendor),
		attribute.Bool("db.success", success),
	)

	if stmtCounter != nil {
		stmtCounter.Add(ctx, 1, attrs)
	}
	if durationHistogram != nil {
		durationHistogram.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
	}
	if rowsCounter != nil && rows > 0 {
		rowsCounter.Add(ctx, rows, attrs)
	}
}
