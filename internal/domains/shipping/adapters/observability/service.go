package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	shipports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
)

const tracerName = "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/observability/service"

// Service decorates the shipping service with tracing, logging, and metrics.
type Service struct {
	inner   shipports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core shipping service.
func New(inner shipports.Service, opts ...Option) shipports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Instance(ctx context.Context, id shipdomain.InstanceID) (*shipdomain.Instance, error) {
	ctx, span := s.tracer.Start(ctx, "ShippingService.Instance", trace.WithAttributes(attribute.Int64("shipping.instance_id", int64(id))))
	defer span.End()

	result, err := s.inner.Instance(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load shipping instance", slog.Int64("shipping.instance_id", int64(id)))
	}
	return result, nil
}

func (s *Service) Instances(ctx context.Context) ([]*shipdomain.Instance, error) {
	ctx, span := s.tracer.Start(ctx, "ShippingService.Instances")
	defer span.End()

	result, err := s.inner.Instances(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list shipping instances")
	}
	span.SetAttributes(attribute.Int("shipping.instances", len(result)))
	return result, nil
}

func (s *Service) Configure(ctx context.Context, id shipdomain.InstanceID, methodID string, settings shipdomain.Settings) (*shipdomain.Instance, error) {
	ctx, span := s.tracer.Start(ctx, "ShippingService.Configure",
		trace.WithAttributes(attribute.Int64("shipping.instance_id", int64(id)), attribute.String("shipping.method_id", methodID)))
	defer span.End()

	result, err := s.inner.Configure(ctx, id, methodID, settings)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to configure shipping instance",
			slog.Int64("shipping.instance_id", int64(id)), slog.String("shipping.method_id", methodID))
	}
	s.metrics.recordConfigured(ctx, methodID)
	s.logInfo(ctx, "shipping instance configured",
		slog.Int64("shipping.instance_id", int64(result.ID)),
		slog.String("shipping.method_id", result.MethodID),
		slog.Int("shipping.carriers", len(result.Carriers)))
	return result, nil
}

func (s *Service) Quote(ctx context.Context, pkg shipdomain.Package, selections map[shipdomain.InstanceID]shipdomain.Selection) ([]shipdomain.Rate, error) {
	ctx, span := s.tracer.Start(ctx, "ShippingService.Quote")
	defer span.End()

	result, err := s.inner.Quote(ctx, pkg, selections)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to quote shipping rates")
	}
	span.SetAttributes(attribute.Int("shipping.rates", len(result)))
	s.metrics.recordQuoted(ctx, len(result))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	configured metric.Int64Counter
	quoted     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	configured, _ := m.Int64Counter("shipping.instances_configured", metric.WithDescription("Number of shipping instance configuration saves"))
	quoted, _ := m.Int64Counter("shipping.rates_quoted", metric.WithDescription("Number of shipping rates quoted"))
	return serviceMetrics{configured: configured, quoted: quoted}
}

func (m serviceMetrics) recordConfigured(ctx context.Context, methodID string) {
	if m.configured != nil {
		m.configured.Add(ctx, 1, metric.WithAttributes(attribute.String("shipping.method_id", methodID)))
	}
}

func (m serviceMetrics) recordQuoted(ctx context.Context, n int) {
	if m.quoted != nil {
		m.quoted.Add(ctx, int64(n))
	}
}

var _ shipports.Service = (*Service)(nil)
