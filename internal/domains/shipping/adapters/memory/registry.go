package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
)

var _ ports.Registry = (*Registry)(nil)

// Registry is an in-memory shipping instance store.
type Registry struct {
	mu        sync.RWMutex
	instances map[domain.InstanceID]*domain.Instance
}

func NewRegistry() *Registry {
	return &Registry{instances: map[domain.InstanceID]*domain.Instance{}}
}

func (r *Registry) Save(_ context.Context, instance *domain.Instance) (*domain.Instance, error) {
	if instance == nil {
		return nil, errors.New("instance is nil")
	}
	clone := instance.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Registry) Get(_ context.Context, id domain.InstanceID) (*domain.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return inst.Clone(), nil
}

func (r *Registry) List(_ context.Context) ([]*domain.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		list = append(list, inst.Clone())
	}
	return list, nil
}

func (r *Registry) Delete(_ context.Context, id domain.InstanceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.instances, id)
	return nil
}
