package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	SessionsStartedTotal  metric.Int64Counter
	TriageTurnsTotal      metric.Int64Counter
	TriageTurnDurationMs  metric.Float64Histogram
	RecordsCommittedTotal metric.Int64Counter

	// Auth metrics
	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

// InitMetrics initializes all custom metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/jcjuneja-hospital/triage-service")

	// HTTP request counter
	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// HTTP duration histogram
	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	// Session counter
	sessionsStartedTotal, err := meter.Int64Counter(
		"triage_sessions_started_total",
		metric.WithDescription("Total number of triage sessions started"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	// Triage turn counter
	triageTurnsTotal, err := meter.Int64Counter(
		"triage_turns_total",
		metric.WithDescription("Total number of assessment turns sent to the assistant"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return nil, err
	}

	// Triage turn duration histogram
	triageTurnDurationMs, err := meter.Float64Histogram(
		"triage_turn_duration_milliseconds",
		metric.WithDescription("Assistant turn round-trip duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	// Record counter
	recordsCommittedTotal, err := meter.Int64Counter(
		"patient_records_committed_total",
		metric.WithDescription("Total number of patient records committed"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	// Auth failures counter
	authFailuresTotal, err := meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	// Permission check duration histogram
	permissionCheckDuration, err := meter.Float64Histogram(
		"permission_check_duration_ms",
		metric.WithDescription("Permission check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	log.Println("✓ Custom metrics initialized")

	return &Metrics{
		HTTPRequestsTotal:       httpRequestsTotal,
		HTTPDurationMs:          httpDurationMs,
		SessionsStartedTotal:    sessionsStartedTotal,
		TriageTurnsTotal:        triageTurnsTotal,
		TriageTurnDurationMs:    triageTurnDurationMs,
		RecordsCommittedTotal:   recordsCommittedTotal,
		AuthFailuresTotal:       authFailuresTotal,
		PermissionCheckDuration: permissionCheckDuration,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordSessionStarted records a new intake session metric
func (m *Metrics) RecordSessionStarted(ctx context.Context) {
	m.SessionsStartedTotal.Add(ctx, 1)
}

// RecordTriageTurn records one assistant round trip. Outcome is one of
// "clarifying", "terminal" or "error".
func (m *Metrics) RecordTriageTurn(ctx context.Context, outcome string, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("outcome", outcome),
	}

	m.TriageTurnsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.TriageTurnDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordCommitted records a committed patient record metric
func (m *Metrics) RecordCommitted(ctx context.Context, status string) {
	m.RecordsCommittedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPermissionCheck records a permission check duration metric
func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
