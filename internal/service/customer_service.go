package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voltai/billing-service/internal/billing"
	"github.com/voltai/billing-service/internal/domain"
	"github.com/voltai/billing-service/internal/events"
	"github.com/voltai/billing-service/internal/observability"
	"github.com/voltai/billing-service/internal/repository"
	apperrors "github.com/voltai/billing-service/pkg/util/errorutil"
)

// CustomerCreateInput captures fields for creating a customer.
type CustomerCreateInput struct {
	Name         string
	Address      string
	MonthlyUsage float64
}

// CustomerDependencies defines collaborators for CustomerService.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	Dispatcher   events.Dispatcher
	Calculator   *billing.Calculator
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Threshold    float64
}

// CustomerService is the customer registry: every usage write recomputes the alert.
type CustomerService struct {
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
	calculator *billing.Calculator
	logger     *zap.Logger
	metrics    *observability.Metrics
	threshold  float64
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = domain.DefaultHighUsageThreshold
	}
	calculator := deps.Calculator
	if calculator == nil {
		calculator = billing.NewCalculator(billing.DefaultRate)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customers:  deps.CustomerRepo,
		dispatcher: deps.Dispatcher,
		calculator: calculator,
		logger:     logger,
		metrics:    deps.Metrics,
		threshold:  threshold,
	}
}

// Threshold returns the usage above which customers are flagged.
func (s *CustomerService) Threshold() float64 {
	return s.threshold
}

// List returns every stored customer.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, s.storageError("list customers", err)
	}
	return customers, nil
}

// Create validates input and stores a new customer with its derived alert.
// Name and address are stored exactly as submitted.
func (s *CustomerService) Create(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Address) == "" {
		return nil, apperrors.NewValidationError("Name and address are required", nil)
	}
	if err := billing.ValidateUsage(input.MonthlyUsage); err != nil {
		return nil, apperrors.NewValidationError("Valid usage value is required", map[string]any{"field": "monthly_usage"})
	}

	customer := &domain.Customer{
		Name:      input.Name,
		Address:   input.Address,
		CreatedAt: time.Now().UTC(),
	}
	customer.ApplyUsage(input.MonthlyUsage, s.threshold)

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, s.storageError("create customer", err)
	}
	s.metrics.RecordCustomerWrite("create")

	s.publish(ctx, events.New(events.EventCustomerCreated, customer.ID, events.CustomerCreatedPayload{
		Name:         customer.Name,
		Address:      customer.Address,
		MonthlyUsage: customer.MonthlyUsage,
		Alert:        customer.Alert,
	}))
	s.publishHighUsage(ctx, customer)
	return customer, nil
}

// UpdateUsage overwrites the monthly usage of a customer and recomputes its alert.
func (s *CustomerService) UpdateUsage(ctx context.Context, id int64, usage float64) (*domain.Customer, error) {
	if err := billing.ValidateUsage(usage); err != nil {
		return nil, apperrors.NewValidationError("Valid usage value is required", map[string]any{"field": "usage"})
	}

	customer, err := s.customers.UpdateUsage(ctx, id, usage, domain.AlertFor(usage, s.threshold))
	if err != nil {
		return nil, s.mapRepoError("update customer usage", id, err)
	}
	s.metrics.RecordCustomerWrite("update_usage")

	s.publish(ctx, events.New(events.EventCustomerUsageUpdated, customer.ID, events.UsageUpdatedPayload{
		MonthlyUsage: customer.MonthlyUsage,
		Alert:        customer.Alert,
	}))
	s.publishHighUsage(ctx, customer)
	return customer, nil
}

// Delete removes a customer permanently.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return s.mapRepoError("delete customer", id, err)
	}
	s.metrics.RecordCustomerWrite("delete")
	s.publish(ctx, events.New(events.EventCustomerDeleted, id, nil))
	return nil
}

// AcknowledgeAlert marks the current high usage alert of a customer as seen.
func (s *CustomerService) AcknowledgeAlert(ctx context.Context, id int64) (*domain.Customer, error) {
	current, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("load customer", id, err)
	}
	if current.Alert == nil {
		return nil, apperrors.NewConflict("Customer has no active alert", map[string]any{"id": id})
	}
	if current.AlertAcknowledged {
		return current, nil
	}

	customer, err := s.customers.AcknowledgeAlert(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("acknowledge alert", id, err)
	}
	s.metrics.RecordCustomerWrite("acknowledge_alert")
	s.publish(ctx, events.New(events.EventCustomerAlertAcknowledged, customer.ID, nil))
	return customer, nil
}

// Stats aggregates dashboard figures across all customers.
func (s *CustomerService) Stats(ctx context.Context) (domain.CustomerStats, error) {
	customers, err := s.List(ctx)
	if err != nil {
		return domain.CustomerStats{}, err
	}

	stats := domain.CustomerStats{
		TotalCustomers: len(customers),
		TotalRevenue:   s.calculator.EstimateRevenue(customers),
		Rate:           s.calculator.Rate(),
	}
	for i := range customers {
		stats.TotalUsage += customers[i].MonthlyUsage
		switch {
		case customers[i].HasActiveAlert():
			stats.ActiveAlerts++
		case customers[i].Alert != nil:
			stats.AcknowledgedAlerts++
		}
	}
	stats.TotalUsage = billing.Round2(stats.TotalUsage)
	return stats, nil
}

// Count returns the number of stored customers.
func (s *CustomerService) Count(ctx context.Context) (int, error) {
	count, err := s.customers.Count(ctx)
	if err != nil {
		return 0, s.storageError("count customers", err)
	}
	return count, nil
}

func (s *CustomerService) publishHighUsage(ctx context.Context, customer *domain.Customer) {
	if customer.Alert == nil {
		return
	}
	s.metrics.RecordHighUsage()
	s.publish(ctx, events.New(events.EventCustomerHighUsage, customer.ID, events.HighUsagePayload{
		Name:         customer.Name,
		MonthlyUsage: customer.MonthlyUsage,
		Threshold:    s.threshold,
	}))
}

// publish never fails the write that triggered it.
func (s *CustomerService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("customer_id", event.CustomerID),
			zap.Error(err))
	}
}

func (s *CustomerService) mapRepoError(operation string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("Customer", map[string]any{"id": id})
	}
	return s.storageError(operation, err)
}

func (s *CustomerService) storageError(operation string, err error) error {
	s.logger.Error("storage failure", zap.String("operation", operation), zap.Error(err))
	return apperrors.NewStorageError(operation, err)
}
