package dto

import (
	"encoding/json"
	"errors"

	"github.com/voltai/billing-service/internal/domain"
)

// ErrInvalidHistory signals that usageHistory is not a non-empty array of numbers.
var ErrInvalidHistory = errors.New("usageHistory must be a non-empty array of numbers")

// CalculateBillRequest payload for POST /calculate-bill.
type CalculateBillRequest struct {
	Usage Number `json:"usage"`
}

// DetectAnomaliesRequest payload for POST /detect-anomalies.
type DetectAnomaliesRequest struct {
	UsageHistory json.RawMessage `json:"usageHistory"`
}

// History decodes usageHistory into numbers.
func (r DetectAnomaliesRequest) History() ([]float64, error) {
	if len(r.UsageHistory) == 0 {
		return nil, ErrInvalidHistory
	}
	var raw []Number
	if err := json.Unmarshal(r.UsageHistory, &raw); err != nil || len(raw) == 0 {
		return nil, ErrInvalidHistory
	}
	history := make([]float64, 0, len(raw))
	for _, n := range raw {
		v, ok := n.Float()
		if !ok {
			return nil, ErrInvalidHistory
		}
		history = append(history, v)
	}
	return history, nil
}

// BillResponse is the result of a bill calculation.
type BillResponse struct {
	Usage   float64 `json:"usage"`
	Amount  float64 `json:"amount"`
	Rate    float64 `json:"rate"`
	Message string  `json:"message"`
}

// AnomalyResponse is the result of an anomaly check.
type AnomalyResponse struct {
	IsAnomaly        bool    `json:"isAnomaly"`
	AverageUsage     float64 `json:"averageUsage"`
	LatestUsage      float64 `json:"latestUsage"`
	PercentageChange float64 `json:"percentageChange"`
	Message          string  `json:"message"`
}

func NewBillResponse(b domain.Bill) BillResponse {
	return BillResponse{Usage: b.Usage, Amount: b.Amount, Rate: b.Rate, Message: b.Message}
}

func NewAnomalyResponse(r domain.AnomalyReport) AnomalyResponse {
	return AnomalyResponse{
		IsAnomaly:        r.IsAnomaly,
		AverageUsage:     r.AverageUsage,
		LatestUsage:      r.LatestUsage,
		PercentageChange: r.PercentageChange,
		Message:          r.Message,
	}
}
