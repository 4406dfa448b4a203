package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/voltai/billing-service/internal/domain"
)

// EmployeeRepository defines persistence access for dashboard employees.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
}

type employeeRepository struct {
	db DBTX
}

// NewEmployeeRepository returns a Postgres-backed implementation.
func NewEmployeeRepository(db DBTX) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (name, email, password_hash, role, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		employee.Name,
		strings.ToLower(employee.Email),
		employee.PasswordHash,
		employee.Role,
		employee.Active,
	).Scan(&employee.ID, &employee.CreatedAt)
	return translate(err)
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM employees WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM employees WHERE email=$1`
	return r.fetchSingle(ctx, query, strings.ToLower(email))
}

func (r *employeeRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Employee, error) {
	var employee domain.Employee
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&employee.PasswordHash,
		&employee.Role,
		&employee.Active,
		&employee.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &employee, nil
}

type memoryEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[int64]domain.Employee
	nextID    int64
}

// NewMemoryEmployeeRepository returns a process-local employee store.
func NewMemoryEmployeeRepository() EmployeeRepository {
	return &memoryEmployeeRepository{employees: make(map[int64]domain.Employee)}
}

func (r *memoryEmployeeRepository) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee.Email = strings.ToLower(employee.Email)
	for _, existing := range r.employees {
		if existing.Email == employee.Email {
			return ErrDuplicate
		}
	}
	r.nextID++
	employee.ID = r.nextID
	employee.CreatedAt = time.Now().UTC()
	r.employees[employee.ID] = *employee
	return nil
}

func (r *memoryEmployeeRepository) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, ok := r.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &employee, nil
}

func (r *memoryEmployeeRepository) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, employee := range r.employees {
		if employee.Email == email {
			out := employee
			return &out, nil
		}
	}
	return nil, ErrNotFound
}
