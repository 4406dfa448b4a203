package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voltai/billing-service/internal/domain"
)

type memoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]domain.Customer
	nextID    atomic.Int64
}

// NewMemoryCustomerRepository returns a process-local store. Ids come from a
// monotonic counter and are never reused after a delete.
func NewMemoryCustomerRepository() CustomerRepository {
	return &memoryCustomerRepository{customers: make(map[int64]domain.Customer)}
}

func (r *memoryCustomerRepository) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		result = append(result, cloneCustomer(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memoryCustomerRepository) Create(_ context.Context, customer *domain.Customer) error {
	customer.ID = r.nextID.Add(1)
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[customer.ID] = cloneCustomer(*customer)
	return nil
}

func (r *memoryCustomerRepository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneCustomer(c)
	return &out, nil
}

func (r *memoryCustomerRepository) UpdateUsage(_ context.Context, id int64, usage float64, alert *string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.MonthlyUsage = usage
	c.Alert = alert
	c.AlertAcknowledged = false
	r.customers[id] = cloneCustomer(c)

	out := cloneCustomer(c)
	return &out, nil
}

func (r *memoryCustomerRepository) AcknowledgeAlert(_ context.Context, id int64) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.AlertAcknowledged = true
	r.customers[id] = c

	out := cloneCustomer(c)
	return &out, nil
}

func (r *memoryCustomerRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[id]; !ok {
		return ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *memoryCustomerRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers), nil
}

// cloneCustomer detaches the alert pointer so callers cannot mutate stored state.
func cloneCustomer(c domain.Customer) domain.Customer {
	if c.Alert != nil {
		alert := *c.Alert
		c.Alert = &alert
	}
	return c
}
