package application

import (
	"context"
	"errors"
	"sort"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
)

// Service orchestrates shipping instance configuration and rate quoting.
type Service struct {
	registry ports.Registry
}

func NewService(registry ports.Registry) *Service {
	return &Service{registry: registry}
}

func (s *Service) Instance(ctx context.Context, id domain.InstanceID) (*domain.Instance, error) {
	if id <= 0 {
		return nil, mapError(domain.ErrInvalidInstanceID)
	}
	return s.registry.Get(ctx, id)
}

func (s *Service) Instances(ctx context.Context) ([]*domain.Instance, error) {
	list, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Configure creates or updates an instance. An empty methodID keeps the
// stored method; a different one replaces it.
func (s *Service) Configure(ctx context.Context, id domain.InstanceID, methodID string, settings domain.Settings) (*domain.Instance, error) {
	current, err := s.registry.Get(ctx, id)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		if methodID == "" {
			methodID = domain.MethodCustomCarrier
		}
		current, err = domain.NewInstance(id, methodID)
		if err != nil {
			return nil, mapError(err)
		}
	case err != nil:
		return nil, err
	case methodID != "":
		current.MethodID = methodID
	}

	method, err := domain.NewMethod(current)
	if err != nil {
		return nil, mapError(err)
	}
	if err := method.Configure(settings); err != nil {
		return nil, mapError(err)
	}
	return s.registry.Save(ctx, method.Instance())
}

// Quote prices every configured instance for the package, suffixing each
// label with the customer's current selection.
func (s *Service) Quote(ctx context.Context, pkg domain.Package, selections map[domain.InstanceID]domain.Selection) ([]domain.Rate, error) {
	instances, err := s.Instances(ctx)
	if err != nil {
		return nil, err
	}
	rates := make([]domain.Rate, 0, len(instances))
	for _, inst := range instances {
		method, err := domain.NewMethod(inst)
		if err != nil {
			// unusable configuration offers no rate
			continue
		}
		rates = append(rates, method.Quote(pkg, selections[inst.ID]))
	}
	return rates, nil
}

var _ ports.Service = (*Service)(nil)
