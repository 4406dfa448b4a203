package dto

import (
	"time"

	"github.com/voltai/billing-service/internal/domain"
)

// CreateCustomerRequest payload for POST /customers. monthly_usage wins over
// initialUsage when both are sent.
type CreateCustomerRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	MonthlyUsage Number `json:"monthly_usage"`
	InitialUsage Number `json:"initialUsage"`
}

// Usage resolves the starting usage. ok is false when a provided value is not numeric.
func (r CreateCustomerRequest) Usage() (usage float64, ok bool) {
	for _, n := range []Number{r.MonthlyUsage, r.InitialUsage} {
		if !n.Present {
			continue
		}
		return n.Value, n.Valid
	}
	return 0, true
}

// UpdateUsageRequest payload for PUT /customers/:id/usage.
type UpdateUsageRequest struct {
	Usage Number `json:"usage"`
}

// CustomerResponse is the wire form of a customer.
type CustomerResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	MonthlyUsage      float64   `json:"monthly_usage"`
	Alert             *string   `json:"alert"`
	AlertAcknowledged bool      `json:"alert_acknowledged"`
	CreatedAt         time.Time `json:"created_at"`
}

// CustomerMutationResponse wraps create, update and acknowledge results.
type CustomerMutationResponse struct {
	Success  bool              `json:"success"`
	Customer *CustomerResponse `json:"customer,omitempty"`
	Message  string            `json:"message"`
}

// CustomerStatsResponse is the dashboard summary.
type CustomerStatsResponse struct {
	TotalCustomers     int     `json:"total_customers"`
	ActiveAlerts       int     `json:"active_alerts"`
	AcknowledgedAlerts int     `json:"acknowledged_alerts"`
	TotalUsage         float64 `json:"total_usage"`
	TotalRevenue       float64 `json:"total_revenue"`
	Rate               float64 `json:"rate"`
}

// NewCustomerResponse maps a domain customer.
func NewCustomerResponse(c *domain.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:                c.ID,
		Name:              c.Name,
		Address:           c.Address,
		MonthlyUsage:      c.MonthlyUsage,
		Alert:             c.Alert,
		AlertAcknowledged: c.AlertAcknowledged,
		CreatedAt:         c.CreatedAt,
	}
}

// NewCustomerListResponse maps a slice, never returning nil.
func NewCustomerListResponse(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, *NewCustomerResponse(&customers[i]))
	}
	return out
}

// NewCustomerStatsResponse maps dashboard stats.
func NewCustomerStatsResponse(s domain.CustomerStats) CustomerStatsResponse {
	return CustomerStatsResponse{
		TotalCustomers:     s.TotalCustomers,
		ActiveAlerts:       s.ActiveAlerts,
		AcknowledgedAlerts: s.AcknowledgedAlerts,
		TotalUsage:         s.TotalUsage,
		TotalRevenue:       s.TotalRevenue,
		Rate:               s.Rate,
	}
}
