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

	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	selports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

const tracerName = "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/observability/service"

// Service decorates the selection service with tracing, logging, and metrics.
type Service struct {
	inner   selports.Service
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

// New wraps the core selection service.
func New(inner selports.Service, opts ...Option) selports.Service {
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

func (s *Service) Session(ctx context.Context, id seldomain.SessionID) (*seldomain.CheckoutSession, error) {
	ctx, span := s.tracer.Start(ctx, "SelectionService.Session")
	defer span.End()

	result, err := s.inner.Session(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load checkout session")
	}
	span.SetAttributes(attribute.Int("selection.count", len(result.Selections)))
	return result, nil
}

func (s *Service) Get(ctx context.Context, id seldomain.SessionID, instance shipdomain.InstanceID) (shipdomain.Selection, error) {
	ctx, span := s.tracer.Start(ctx, "SelectionService.Get",
		trace.WithAttributes(attribute.Int64("shipping.instance_id", int64(instance))))
	defer span.End()

	result, err := s.inner.Get(ctx, id, instance)
	if err != nil {
		return shipdomain.Selection{}, s.handleError(ctx, span, err, "failed to load selection",
			slog.Int64("shipping.instance_id", int64(instance)))
	}
	return result, nil
}

func (s *Service) Save(ctx context.Context, in selports.SaveInput) (selports.SaveResult, error) {
	ctx, span := s.tracer.Start(ctx, "SelectionService.Save",
		trace.WithAttributes(attribute.Int64("shipping.instance_id", int64(in.Instance))))
	defer span.End()

	result, err := s.inner.Save(ctx, in)
	if err != nil {
		return selports.SaveResult{}, s.handleError(ctx, span, err, "failed to save carrier selection",
			slog.Int64("shipping.instance_id", int64(in.Instance)))
	}
	span.SetAttributes(
		attribute.Bool("selection.saved", result.Saved),
		attribute.Bool("selection.duplicate", result.Duplicate),
	)
	switch {
	case !result.Saved:
		s.metrics.recordEmpty(ctx)
		s.logDebug(ctx, "empty carrier selection ignored", slog.Int64("shipping.instance_id", int64(in.Instance)))
	case result.Duplicate:
		s.metrics.recordDuplicate(ctx)
		s.logDebug(ctx, "duplicate carrier selection ignored", slog.Int64("shipping.instance_id", int64(in.Instance)))
	default:
		s.metrics.recordSaved(ctx)
		s.logInfo(ctx, "carrier selection saved", slog.Int64("shipping.instance_id", int64(in.Instance)))
	}
	return result, nil
}

func (s *Service) ApplyFormFallback(ctx context.Context, id seldomain.SessionID, submission seldomain.FormSubmission) error {
	ctx, span := s.tracer.Start(ctx, "SelectionService.ApplyFormFallback",
		trace.WithAttributes(attribute.Int("submission.instances", len(submission.Instances()))))
	defer span.End()

	if err := s.inner.ApplyFormFallback(ctx, id, submission); err != nil {
		return s.handleError(ctx, span, err, "failed to apply submitted carriers")
	}
	return nil
}

func (s *Service) SetChosenMethods(ctx context.Context, id seldomain.SessionID, rateIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "SelectionService.SetChosenMethods",
		trace.WithAttributes(attribute.StringSlice("shipping.chosen_methods", rateIDs)))
	defer span.End()

	if err := s.inner.SetChosenMethods(ctx, id, rateIDs); err != nil {
		return s.handleError(ctx, span, err, "failed to record chosen shipping methods")
	}
	return nil
}

func (s *Service) IssueToken(ctx context.Context, id seldomain.SessionID) (string, error) {
	ctx, span := s.tracer.Start(ctx, "SelectionService.IssueToken")
	defer span.End()

	tok, err := s.inner.IssueToken(ctx, id)
	if err != nil {
		return "", s.handleError(ctx, span, err, "failed to issue token")
	}
	return tok, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logDebug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
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
	saves      metric.Int64Counter
	duplicates metric.Int64Counter
	empty      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	saves, _ := m.Int64Counter("selection.saves", metric.WithDescription("Number of accepted carrier saves"))
	duplicates, _ := m.Int64Counter("selection.duplicates", metric.WithDescription("Number of saves dropped by the dedupe window"))
	empty, _ := m.Int64Counter("selection.empty", metric.WithDescription("Number of empty save payloads"))
	return serviceMetrics{saves: saves, duplicates: duplicates, empty: empty}
}

func (m serviceMetrics) recordSaved(ctx context.Context) {
	if m.saves != nil {
		m.saves.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDuplicate(ctx context.Context) {
	if m.duplicates != nil {
		m.duplicates.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordEmpty(ctx context.Context) {
	if m.empty != nil {
		m.empty.Add(ctx, 1)
	}
}

var _ selports.Service = (*Service)(nil)
