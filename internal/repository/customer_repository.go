package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/voltai/billing-service/internal/domain"
)

// CustomerRepository defines persistence access for customers.
type CustomerRepository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	UpdateUsage(ctx context.Context, id int64, usage float64, alert *string) (*domain.Customer, error)
	AcknowledgeAlert(ctx context.Context, id int64) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, address, monthly_usage, alert, alert_acknowledged, created_at`

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *customer)
	}
	return result, rows.Err()
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, address, monthly_usage, alert, alert_acknowledged, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		customer.Name,
		customer.Address,
		customer.MonthlyUsage,
		customer.Alert,
		customer.AlertAcknowledged,
		customer.CreatedAt,
	).Scan(&customer.ID, &customer.CreatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, translate(err)
	}
	return customer, nil
}

func (r *customerRepository) UpdateUsage(ctx context.Context, id int64, usage float64, alert *string) (*domain.Customer, error) {
	const query = `
        UPDATE customers SET monthly_usage=$1, alert=$2, alert_acknowledged=FALSE
        WHERE id=$3
        RETURNING ` + customerColumns

	customer, err := scanCustomer(r.db.QueryRow(ctx, query, usage, alert, id))
	if err != nil {
		return nil, translate(err)
	}
	return customer, nil
}

func (r *customerRepository) AcknowledgeAlert(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `
        UPDATE customers SET alert_acknowledged=TRUE
        WHERE id=$1
        RETURNING ` + customerColumns

	customer, err := scanCustomer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return customer, nil
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *customerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Address,
		&customer.MonthlyUsage,
		&customer.Alert,
		&customer.AlertAcknowledged,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
