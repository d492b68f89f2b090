package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// DonationMetrics records the service's business counters.
type DonationMetrics struct {
	leavesCreated      metric.Int64Counter
	checkoutsStarted   metric.Int64Counter
	commitmentsCreated metric.Int64Counter
	monthlyCents       metric.Int64Counter
	webhookEvents      metric.Int64Counter
}

// NewDonationMetrics registers the counters on meter.
func NewDonationMetrics(meter metric.Meter) (*DonationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   DonationMetrics
		err error
	)
	if m.leavesCreated, err = meter.Int64Counter("toh_leaves_created_total",
		metric.WithDescription("Leaves stored, by source"), metric.WithUnit("{leaves}")); err != nil {
		return nil, err
	}
	if m.checkoutsStarted, err = meter.Int64Counter("toh_checkouts_started_total",
		metric.WithDescription("Checkout sessions created"), metric.WithUnit("{sessions}")); err != nil {
		return nil, err
	}
	if m.commitmentsCreated, err = meter.Int64Counter("toh_commitments_created_total",
		metric.WithDescription("Commitments created from completed checkouts"), metric.WithUnit("{commitments}")); err != nil {
		return nil, err
	}
	if m.monthlyCents, err = meter.Int64Counter("toh_monthly_pledged_cents_total",
		metric.WithDescription("Monthly amounts pledged by new commitments"), metric.WithUnit("{cents}")); err != nil {
		return nil, err
	}
	if m.webhookEvents, err = meter.Int64Counter("toh_webhook_events_total",
		metric.WithDescription("Payment provider webhook events, by type and outcome"), metric.WithUnit("{events}")); err != nil {
		return nil, err
	}
	return &m, nil
}

// LeafCreated counts a stored leaf.
func (m *DonationMetrics) LeafCreated(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.leavesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// CheckoutStarted counts a created checkout session.
func (m *DonationMetrics) CheckoutStarted(ctx context.Context, tier string) {
	if m == nil {
		return
	}
	m.checkoutsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

// CommitmentCreated counts a new commitment and its monthly amount.
func (m *DonationMetrics) CommitmentCreated(ctx context.Context, tier string, monthlyCents int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("tier", tier))
	m.commitmentsCreated.Add(ctx, 1, attrs)
	m.monthlyCents.Add(ctx, monthlyCents, attrs)
}

// WebhookEvent counts a processed webhook event.
func (m *DonationMetrics) WebhookEvent(ctx context.Context, eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome),
	))
}
