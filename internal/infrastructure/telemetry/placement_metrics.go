package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// outcomePlaced matches the outcome label of a committed order
const outcomePlaced = "placed"

// PlacementMetrics counts order placements by outcome. It satisfies the
// ordering package's PlacementRecorder.
type PlacementMetrics struct {
	placements metric.Int64Counter
	quantity   metric.Int64Histogram
}

// NewPlacementMetrics creates the placement instruments on meter
func NewPlacementMetrics(meter metric.Meter) (*PlacementMetrics, error) {
	placements, err := meter.Int64Counter("comufarm.order.placements",
		metric.WithDescription("Order placement attempts by outcome"),
		metric.WithUnit("{placement}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create placement counter: %w", err)
	}
	quantity, err := meter.Int64Histogram("comufarm.order.quantity",
		metric.WithDescription("Quantity of placed orders"),
		metric.WithUnit("kg"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 20, 50, 100, 500, 1000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quantity histogram: %w", err)
	}
	return &PlacementMetrics{placements: placements, quantity: quantity}, nil
}

// RecordPlacement counts one outcome. Quantity is recorded for placed orders only.
func (m *PlacementMetrics) RecordPlacement(outcome string, quantity int) {
	ctx := context.Background()
	m.placements.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome == outcomePlaced {
		m.quantity.Record(ctx, int64(quantity))
	}
}
