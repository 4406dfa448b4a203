package billing

import (
	"errors"
	"fmt"
	"math"

	"github.com/voltai/billing-service/internal/domain"
)

// DefaultAnomalyFactor flags a reading above 1.5x the historical average.
const DefaultAnomalyFactor = 1.5

// ErrInvalidHistory is returned for empty histories or histories with invalid readings.
var ErrInvalidHistory = errors.New("usage history must be a non-empty list of numbers")

// Detector compares the latest reading of a usage history against its mean.
type Detector struct {
	factor float64
}

// NewDetector returns a detector using the given multiplier, falling back to DefaultAnomalyFactor.
func NewDetector(factor float64) *Detector {
	if factor <= 0 || !isFinite(factor) {
		factor = DefaultAnomalyFactor
	}
	return &Detector{factor: factor}
}

// Detect evaluates the last element of history against the mean of the whole history.
// Readings may be negative (meter corrections) but must be finite and within MaxUsage.
func (d *Detector) Detect(history []float64) (domain.AnomalyReport, error) {
	if len(history) == 0 {
		return domain.AnomalyReport{}, ErrInvalidHistory
	}

	var sum float64
	for _, v := range history {
		if !isFinite(v) || math.Abs(v) > MaxUsage {
			return domain.AnomalyReport{}, ErrInvalidHistory
		}
		sum += v
	}
	average := sum / float64(len(history))
	latest := history[len(history)-1]

	var change float64
	if average != 0 {
		change = (latest - average) / average * 100
	}
	if !isFinite(average) || !isFinite(change) {
		return domain.AnomalyReport{}, ErrInvalidHistory
	}

	report := domain.AnomalyReport{
		IsAnomaly:        latest > average*d.factor,
		AverageUsage:     Round2(average),
		LatestUsage:      latest,
		PercentageChange: Round2(change),
		Message:          "Usage patterns normal",
	}
	if report.IsAnomaly {
		report.Message = fmt.Sprintf("High usage detected! %.2f%% above average", change)
	}
	return report, nil
}
