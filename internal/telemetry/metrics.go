// Package telemetry exposes the service's operational counters through
// OpenTelemetry. Counters are registered against the global meter
// provider, so a host without an exporter configured gets no-op
// instruments at zero cost.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/thebtf/venuerank"

// Metrics bundles the counters the recommendation pipeline increments.
type Metrics struct {
	recommendations metric.Int64Counter
	coldStarts      metric.Int64Counter
	scoringFallback metric.Int64Counter
	enrichCacheHits metric.Int64Counter
	activities      metric.Int64Counter
}

// NewMetrics registers the instruments. Registration errors yield nil
// instruments, which the record methods tolerate.
func NewMetrics() *Metrics {
	meter := otel.Meter(meterName)
	m := &Metrics{}

	m.recommendations, _ = meter.Int64Counter("venuerank.recommendations.served",
		metric.WithDescription("Recommendation lists served, by surface"))
	m.coldStarts, _ = meter.Int64Counter("venuerank.recommendations.cold_starts",
		metric.WithDescription("User requests answered with the trending fallback"))
	m.scoringFallback, _ = meter.Int64Counter("venuerank.scoring.fallbacks",
		metric.WithDescription("Facility scoring requests served by the rule scorer"))
	m.enrichCacheHits, _ = meter.Int64Counter("venuerank.enrichment.cache_hits",
		metric.WithDescription("Hotel detail lookups answered from cache"))
	m.activities, _ = meter.Int64Counter("venuerank.activities.recorded",
		metric.WithDescription("Activity signals accepted, by actor role"))

	return m
}

// RecommendationServed counts one served list for a surface (user,
// planner, group, guest).
func (m *Metrics) RecommendationServed(ctx context.Context, surface string) {
	if m == nil || m.recommendations == nil {
		return
	}
	m.recommendations.Add(ctx, 1, metric.WithAttributes(attribute.String("surface", surface)))
}

// ColdStart counts one trending fallback response.
func (m *Metrics) ColdStart(ctx context.Context) {
	if m == nil || m.coldStarts == nil {
		return
	}
	m.coldStarts.Add(ctx, 1)
}

// ScoringFallback counts one rule-scorer response.
func (m *Metrics) ScoringFallback(ctx context.Context) {
	if m == nil || m.scoringFallback == nil {
		return
	}
	m.scoringFallback.Add(ctx, 1)
}

// EnrichmentCacheHit counts cache-answered detail lookups.
func (m *Metrics) EnrichmentCacheHit(ctx context.Context, n int64) {
	if m == nil || m.enrichCacheHits == nil || n <= 0 {
		return
	}
	m.enrichCacheHits.Add(ctx, n)
}

// ActivityRecorded counts one accepted activity signal.
func (m *Metrics) ActivityRecorded(ctx context.Context, role string) {
	if m == nil || m.activities == nil {
		return
	}
	m.activities.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}
