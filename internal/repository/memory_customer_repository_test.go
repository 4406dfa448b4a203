package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltai/billing-service/internal/domain"
)

func TestMemoryCustomerRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomerRepository()

	customer := &domain.Customer{Name: "A", Address: "B", MonthlyUsage: 850, Alert: domain.AlertFor(850, 800)}
	require.NoError(t, repo.Create(ctx, customer))
	assert.Equal(t, int64(1), customer.ID)
	assert.False(t, customer.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, *customer, *got)

	updated, err := repo.UpdateUsage(ctx, customer.ID, 500, nil)
	require.NoError(t, err)
	assert.Equal(t, 500.0, updated.MonthlyUsage)
	assert.Nil(t, updated.Alert)
	assert.Equal(t, customer.CreatedAt, updated.CreatedAt)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, customer.ID))
	_, err = repo.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCustomerRepository_MissingIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomerRepository()

	_, err := repo.UpdateUsage(ctx, 42, 100, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.AcknowledgeAlert(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 42), ErrNotFound)
}

func TestMemoryCustomerRepository_IDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomerRepository()

	first := &domain.Customer{Name: "first", Address: "x"}
	second := &domain.Customer{Name: "second", Address: "y"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Delete(ctx, first.ID))

	third := &domain.Customer{Name: "third", Address: "z"}
	require.NoError(t, repo.Create(ctx, third))
	assert.Equal(t, int64(3), third.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int64{2, 3}, []int64{list[0].ID, list[1].ID})
}

func TestMemoryCustomerRepository_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomerRepository()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &domain.Customer{Name: "n", Address: "a"})
		}()
	}
	wg.Wait()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, workers)

	seen := make(map[int64]struct{}, workers)
	for _, c := range list {
		seen[c.ID] = struct{}{}
	}
	assert.Len(t, seen, workers)
}

func TestMemoryCustomerRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCustomerRepository()

	customer := &domain.Customer{Name: "A", Address: "B", MonthlyUsage: 900, Alert: domain.AlertFor(900, 800)}
	require.NoError(t, repo.Create(ctx, customer))

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	*got.Alert = "tampered"
	got.Name = "tampered"

	again, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, domain.AlertHighUsage, *again.Alert)
}

func TestMemoryEmployeeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEmployeeRepository()

	employee := &domain.Employee{Name: "Admin", Email: "Admin@VoltAI.com", Role: domain.EmployeeRoleAdmin, Active: true}
	require.NoError(t, repo.Create(ctx, employee))
	assert.Equal(t, int64(1), employee.ID)

	got, err := repo.GetByEmail(ctx, "admin@voltai.com")
	require.NoError(t, err)
	assert.Equal(t, employee.ID, got.ID)

	err = repo.Create(ctx, &domain.Employee{Email: "ADMIN@voltai.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
