package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome labels for analysis requests
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid_input"
	OutcomeFailure  = "internal_error"
	OutcomeCacheHit = "cache_hit"
)

// AnalyticsMetrics holds the instruments recorded by the menu engineering engine
// and its background jobs.
type AnalyticsMetrics struct {
	requests      *Counter
	duration      *Histogram
	dishes        *Histogram
	skippedEvents *Counter
	classified    *Counter
	jobs          *Counter
}

// NewAnalyticsMetrics registers the analytics instruments on meter.
func NewAnalyticsMetrics(meter metric.Meter) (*AnalyticsMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   AnalyticsMetrics
		err error
	)
	if m.requests, err = NewCounter(meter, "kitchen_menu_engineering_requests_total",
		"Menu engineering analyses by outcome", "{requests}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "kitchen_menu_engineering_duration_seconds",
		Description: "Wall time of a menu engineering analysis",
		Unit:        "s",
		Boundaries:  AnalysisDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.dishes, err = NewHistogram(meter, HistogramOpts{
		Name:        "kitchen_menu_engineering_dishes",
		Description: "Dishes returned per analysis",
		Unit:        "{dishes}",
		Boundaries:  DishCountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.skippedEvents, err = NewCounter(meter, "kitchen_sales_events_skipped_total",
		"Sales events that did not contribute to an analysis", "{events}"); err != nil {
		return nil, err
	}
	if m.classified, err = NewCounter(meter, "kitchen_dishes_classified_total",
		"Dishes per menu engineering classification", "{dishes}"); err != nil {
		return nil, err
	}
	if m.jobs, err = NewCounter(meter, "kitchen_analytics_jobs_total",
		"Background analytics job attempts by type and status", "{jobs}"); err != nil {
		return nil, err
	}
	return &m, nil
}

func outletScope(outletID string) attribute.KeyValue {
	if outletID == "" {
		return AttrOutletScope.String("all")
	}
	return AttrOutletScope.String("single")
}

// RecordAnalysis records one analysis request.
func (m *AnalyticsMetrics) RecordAnalysis(ctx context.Context, outletID, outcome, foldMode string, d time.Duration, dishes int) {
	if m == nil {
		return
	}
	scope := outletScope(outletID)
	m.requests.Inc(ctx, scope, AttrOutcome.String(outcome))
	m.duration.RecordDuration(ctx, d, scope, AttrOutcome.String(outcome), AttrFoldMode.String(foldMode))
	if outcome == OutcomeSuccess || outcome == OutcomeCacheHit {
		m.dishes.Record(ctx, float64(dishes), scope)
	}
}

// RecordSkippedEvents counts events dropped by the fold.
func (m *AnalyticsMetrics) RecordSkippedEvents(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedEvents.Add(ctx, int64(n))
}

// RecordClassifications counts dishes per classification label.
func (m *AnalyticsMetrics) RecordClassifications(ctx context.Context, counts map[string]int) {
	if m == nil {
		return
	}
	for label, n := range counts {
		if n > 0 {
			m.classified.Add(ctx, int64(n), AttrClassification.String(label))
		}
	}
}

// RecordJob counts a finished background job attempt.
func (m *AnalyticsMetrics) RecordJob(ctx context.Context, jobType, status string) {
	if m == nil {
		return
	}
	m.jobs.Inc(ctx, AttrJobType.String(jobType), AttrJobStatus.String(status))
}
