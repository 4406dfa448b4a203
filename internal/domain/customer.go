package domain

import "time"

// AlertHighUsage is the alert label attached to customers above the usage threshold.
const AlertHighUsage = "High Usage"

// DefaultHighUsageThreshold is the monthly kWh above which a customer is flagged.
const DefaultHighUsageThreshold = 800.0

// Customer is one account under management. Alert is derived from MonthlyUsage
// and must be recomputed on every usage write.
type Customer struct {
	ID                int64
	Name              string
	Address           string
	MonthlyUsage      float64
	Alert             *string
	AlertAcknowledged bool
	CreatedAt         time.Time
}

// AlertFor returns the alert label for the given usage, or nil when usage is within bounds.
func AlertFor(usage, threshold float64) *string {
	if usage > threshold {
		alert := AlertHighUsage
		return &alert
	}
	return nil
}

// ApplyUsage overwrites usage and recomputes the derived alert state.
func (c *Customer) ApplyUsage(usage, threshold float64) {
	c.MonthlyUsage = usage
	c.Alert = AlertFor(usage, threshold)
	c.AlertAcknowledged = false
}

// HasActiveAlert reports whether the customer has an alert nobody acknowledged yet.
func (c *Customer) HasActiveAlert() bool {
	return c.Alert != nil && !c.AlertAcknowledged
}

// CustomerStats summarises the customer base for the employee dashboard.
type CustomerStats struct {
	TotalCustomers     int
	ActiveAlerts       int
	AcknowledgedAlerts int
	TotalUsage         float64
	TotalRevenue       float64
	Rate               float64
}
