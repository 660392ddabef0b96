package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	seatGrants       metric.Int64Counter
	seatDenials      metric.Int64Counter
	pricingConflicts metric.Int64Counter
	quotaUpdates     metric.Int64Counter
	loginThrottled   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tessera"
	}
	meter := provider.Meter(name)

	seatGrants, err := meter.Int64Counter("tessera_seat_grants_total")
	if err != nil {
		return nil, err
	}
	seatDenials, err := meter.Int64Counter("tessera_seat_denials_total")
	if err != nil {
		return nil, err
	}
	pricingConflicts, err := meter.Int64Counter("tessera_pricing_conflicts_total")
	if err != nil {
		return nil, err
	}
	quotaUpdates, err := meter.Int64Counter("tessera_quota_updates_total")
	if err != nil {
		return nil, err
	}
	loginThrottled, err := meter.Int64Counter("tessera_login_throttled_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		seatGrants:       seatGrants,
		seatDenials:      seatDenials,
		pricingConflicts: pricingConflicts,
		quotaUpdates:     quotaUpdates,
		loginThrottled:   loginThrottled,
	}, nil
}

// RecordSeatGrant increments successful seat grant counts.
func (m *Metrics) RecordSeatGrant(ctx context.Context, tenantID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("tenant_id", strings.TrimSpace(tenantID)))
	m.seatGrants.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSeatDenial increments rejected seat grant counts.
func (m *Metrics) RecordSeatDenial(ctx context.Context, tenantID, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.seatDenials.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPricingConflict increments rejected pricing period counts.
func (m *Metrics) RecordPricingConflict(ctx context.Context, applicationID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("application_id", strings.TrimSpace(applicationID)))
	m.pricingConflicts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordQuotaUpdate increments quota plan assignment counts.
func (m *Metrics) RecordQuotaUpdate(ctx context.Context, tenantID, planCode string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("tenant_id", strings.TrimSpace(tenantID)),
		attribute.String("plan_code", strings.TrimSpace(planCode)),
	)
	m.quotaUpdates.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLoginThrottled increments throttled login attempt counts.
func (m *Metrics) RecordLoginThrottled(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.loginThrottled.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"tenant_id":      {},
	"application_id": {},
	"endpoint":       {},
	"status_code":    {},
	"plan_code":      {},
	"reason":         {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
