package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
)

const tracerName = "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ordersports.Service
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

// New wraps the core orders service.
func New(inner ordersports.Service, opts ...Option) ordersports.Service {
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

func (s *Service) Validate(ctx context.Context, session seldomain.SessionID, submission seldomain.FormSubmission) ([]ordersdomain.Notice, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.Validate")
	defer span.End()

	notices, err := s.inner.Validate(ctx, session, submission)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to validate checkout")
	}
	span.SetAttributes(attribute.Int("checkout.notices", len(notices)))
	if len(notices) > 0 {
		s.metrics.recordValidationFailure(ctx)
	}
	return notices, nil
}

func (s *Service) PlaceOrder(ctx context.Context, in ordersports.PlaceOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.PlaceOrder")
	defer span.End()

	order, err := s.inner.PlaceOrder(ctx, in)
	if err != nil {
		if errors.Is(err, ordersapp.ErrValidationFailed) {
			s.metrics.recordValidationFailure(ctx)
			span.SetAttributes(attribute.Bool("checkout.blocked", true))
			s.logInfo(ctx, "checkout blocked by carrier validation", slog.String("error", err.Error()))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to place order")
	}
	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.Bool("order.carriers_resolved", order.HasCarriers()),
	)
	if order.HasCarriers() {
		s.metrics.recordCommit(ctx, ordersdomain.TriggerOrderCreated)
	}
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", order.ID),
		slog.Bool("order.carriers_resolved", order.HasCarriers()))
	return order, nil
}

func (s *Service) Commit(ctx context.Context, req ordersports.CommitRequest) (ordersports.CommitResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.Commit",
		trace.WithAttributes(
			attribute.Int64("order.id", req.OrderID),
			attribute.String("order.commit_trigger", string(req.Trigger)),
		))
	defer span.End()

	result, err := s.inner.Commit(ctx, req)
	if err != nil {
		return ordersports.CommitResult{}, s.handleError(ctx, span, err, "failed to commit order carriers",
			slog.Int64("order.id", req.OrderID),
			slog.String("order.commit_trigger", string(req.Trigger)))
	}
	span.SetAttributes(attribute.Bool("order.committed", result.Committed))
	if result.Committed {
		s.metrics.recordCommit(ctx, req.Trigger)
		s.logInfo(ctx, "order carriers committed",
			slog.Int64("order.id", req.OrderID),
			slog.String("order.commit_trigger", string(req.Trigger)),
			slog.Int("order.carriers", len(result.Carriers)))
	} else {
		s.metrics.recordSkipped(ctx, req.Trigger)
		s.logDebug(ctx, "order carrier commit skipped",
			slog.Int64("order.id", req.OrderID),
			slog.String("order.commit_trigger", string(req.Trigger)))
	}
	return result, nil
}

func (s *Service) ThankYou(ctx context.Context, orderID int64) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ThankYou",
		trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.inner.ThankYou(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to finalize order", slog.Int64("order.id", orderID))
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetOrder",
		trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ListOrders")
	defer span.End()

	orders, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) DescribeCarriers(ctx context.Context, order *ordersdomain.Order) ([]ordersports.CarrierDescription, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.DescribeCarriers")
	defer span.End()

	out, err := s.inner.DescribeCarriers(ctx, order)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to describe order carriers")
	}
	return out, nil
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
	commits            metric.Int64Counter
	skipped            metric.Int64Counter
	validationFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	commits, _ := m.Int64Counter("orders.commits", metric.WithDescription("Number of carrier records written onto orders"))
	skipped, _ := m.Int64Counter("orders.commit_skipped", metric.WithDescription("Number of commit triggers that found nothing to write"))
	failures, _ := m.Int64Counter("orders.validation_failures", metric.WithDescription("Number of checkouts blocked by carrier validation"))
	return serviceMetrics{commits: commits, skipped: skipped, validationFailures: failures}
}

func (m serviceMetrics) recordCommit(ctx context.Context, trigger ordersdomain.Trigger) {
	if m.commits != nil {
		m.commits.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", string(trigger))))
	}
}

func (m serviceMetrics) recordSkipped(ctx context.Context, trigger ordersdomain.Trigger) {
	if m.skipped != nil {
		m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", string(trigger))))
	}
}

func (m serviceMetrics) recordValidationFailure(ctx context.Context) {
	if m.validationFailures != nil {
		m.validationFailures.Add(ctx, 1)
	}
}

var _ ordersports.Service = (*Service)(nil)
