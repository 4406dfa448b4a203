// Package billing prices energy usage and flags unusual consumption.
package billing

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/voltai/billing-service/internal/domain"
)

// DefaultRate is the price per kWh.
const DefaultRate = 0.15

// MaxUsage bounds a single usage reading in kWh so sums and amounts stay finite.
const MaxUsage = 1e12

// ErrInvalidUsage is returned for negative or non-finite usage values.
var ErrInvalidUsage = errors.New("usage must be a number between 0 and 1e12")

// Calculator prices usage at a fixed per-kWh rate.
type Calculator struct {
	rate float64
}

// NewCalculator returns a calculator for the given rate, falling back to DefaultRate.
func NewCalculator(rate float64) *Calculator {
	if rate <= 0 || !isFinite(rate) {
		rate = DefaultRate
	}
	return &Calculator{rate: rate}
}

// Rate returns the configured price per kWh.
func (c *Calculator) Rate() float64 {
	return c.rate
}

// Calculate prices a monthly usage figure. The amount is rounded to cents.
func (c *Calculator) Calculate(usage float64) (domain.Bill, error) {
	if err := ValidateUsage(usage); err != nil {
		return domain.Bill{}, err
	}
	amount := Round2(usage * c.rate)
	if !isFinite(amount) {
		return domain.Bill{}, ErrInvalidUsage
	}
	return domain.Bill{
		Usage:   usage,
		Amount:  amount,
		Rate:    c.rate,
		Message: fmt.Sprintf("Bill calculated for %s kWh", FormatKWh(usage)),
	}, nil
}

// EstimateRevenue sums the bill amounts of the given customers.
func (c *Calculator) EstimateRevenue(customers []domain.Customer) float64 {
	var total float64
	for i := range customers {
		total += Round2(customers[i].MonthlyUsage * c.rate)
	}
	return Round2(total)
}

// ValidateUsage rejects negative, NaN, infinite and out of range usage.
func ValidateUsage(usage float64) error {
	if !isFinite(usage) || usage < 0 || usage > MaxUsage {
		return ErrInvalidUsage
	}
	return nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatKWh renders a usage value without trailing zeros.
func FormatKWh(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
