package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// Service orchestrates checkout validation, order creation and the
// write-once carrier commit.
type Service struct {
	repo      ports.Repository
	sessions  ports.SessionReader
	instances ports.InstanceLookup
	resolver  *Resolver
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionReader, instances ports.InstanceLookup, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		sessions:  sessions,
		instances: instances,
		resolver:  NewResolver(instances),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Validate returns the notices that would block a checkout right now.
func (s *Service) Validate(ctx context.Context, session seldomain.SessionID, submission seldomain.FormSubmission) ([]domain.Notice, error) {
	sess, err := s.sessions.Session(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.resolver.Validate(sess, submission), nil
}

// PlaceOrder validates the checkout, builds the order from the chosen
// shipping rates and resolves carriers onto it before it is first stored.
func (s *Service) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	sess, err := s.sessions.Session(ctx, in.Session)
	if err != nil {
		return nil, err
	}
	if notices := s.resolver.Validate(sess, in.Submission); len(notices) > 0 {
		return nil, &ValidationError{Notices: notices}
	}
	lines := s.shippingLines(ctx, sess)
	if len(lines) == 0 {
		return nil, ErrNoShipping
	}

	now := s.now()
	order := domain.NewOrder(string(sess.ID), lines, now)
	record := s.resolver.Record(ctx, sess, in.Submission, domain.TriggerOrderCreated, now)
	if !record.IsEmpty() {
		if err := order.CommitCarriers(record); err != nil {
			return nil, mapError(err)
		}
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, order)
}

// Commit resolves carriers onto a stored order from the session that placed
// it. Orders that already carry a record are left untouched and reported as
// not committed. A request naming any other session is rejected.
func (s *Service) Commit(ctx context.Context, req ports.CommitRequest) (ports.CommitResult, error) {
	if err := req.Trigger.Validate(); err != nil {
		return ports.CommitResult{}, mapError(err)
	}
	if req.OrderID <= 0 {
		return ports.CommitResult{}, mapError(domain.ErrInvalidOrderID)
	}
	existing, err := s.repo.GetByID(ctx, req.OrderID)
	if err != nil {
		return ports.CommitResult{}, err
	}
	if existing.HasCarriers() {
		return ports.CommitResult{Committed: false, Carriers: existing.Carriers.Clone().Carriers}, nil
	}

	session := seldomain.SessionID(existing.SessionID)
	if req.Session != "" && req.Session != session {
		return ports.CommitResult{}, ErrSessionMismatch
	}
	sess, err := s.sessions.Session(ctx, session)
	if err != nil {
		return ports.CommitResult{}, err
	}
	record := s.resolver.Record(ctx, sess, req.Submission, req.Trigger, s.now())
	if record.IsEmpty() {
		return ports.CommitResult{}, nil
	}

	updated, err := s.repo.Update(ctx, req.OrderID, func(order *domain.Order) error {
		return order.CommitCarriers(record)
	})
	if errors.Is(err, domain.ErrAlreadyResolved) {
		return ports.CommitResult{Committed: false}, nil
	}
	if err != nil {
		return ports.CommitResult{}, err
	}
	return ports.CommitResult{Committed: true, Carriers: updated.Carriers.Clone().Carriers}, nil
}

// ThankYou runs the last commit attempt against the order's own session and
// returns the order for display.
func (s *Service) ThankYou(ctx context.Context, orderID int64) (*domain.Order, error) {
	if _, err := s.Commit(ctx, ports.CommitRequest{
		OrderID: orderID,
		Trigger: domain.TriggerThankYou,
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

// DescribeCarriers lists the committed carriers of an order. A missing
// method title falls back to the instance's current title.
func (s *Service) DescribeCarriers(ctx context.Context, order *domain.Order) ([]ports.CarrierDescription, error) {
	if !order.HasCarriers() {
		return nil, nil
	}
	entries := order.Carriers.Entries()
	out := make([]ports.CarrierDescription, 0, len(entries))
	for _, entry := range entries {
		title := entry.MethodTitle
		if title == "" && s.instances != nil {
			if inst, err := s.instances.Get(ctx, entry.Instance); err == nil {
				title = inst.Title
			}
		}
		out = append(out, ports.CarrierDescription{Instance: entry.Instance, Title: title, Carrier: entry.Carrier})
	}
	return out, nil
}

// shippingLines prices each chosen rate. Rates of other methods keep their
// rate id as title; carrier rates whose instance is gone are skipped.
func (s *Service) shippingLines(ctx context.Context, sess *seldomain.CheckoutSession) []domain.ShippingLine {
	var lines []domain.ShippingLine
	for i, rateID := range sess.ChosenMethods {
		methodID, id, _ := shipdomain.ParseRateID(rateID)
		line := domain.ShippingLine{
			ID:          int64(i + 1),
			MethodID:    methodID,
			InstanceID:  id,
			MethodTitle: rateID,
		}
		if shipdomain.IsCarrierMethod(methodID) {
			inst, err := s.instances.Get(ctx, id)
			if err != nil {
				continue
			}
			method, err := shipdomain.NewMethod(inst)
			if err != nil {
				continue
			}
			rate := method.Quote(shipdomain.Package{}, shipdomain.Selection{})
			line.MethodTitle = inst.Title
			line.Total = rate.Cost
		}
		lines = append(lines, line)
	}
	return lines
}

var _ ports.Service = (*Service)(nil)
