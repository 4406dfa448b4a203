package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/voltai/billing-service/internal/api/dto"
	"github.com/voltai/billing-service/internal/billing"
	"github.com/voltai/billing-service/internal/observability"
	apperrors "github.com/voltai/billing-service/pkg/util/errorutil"
)

// BillingHandler serves the stateless bill and anomaly calculations.
type BillingHandler struct {
	calculator *billing.Calculator
	detector   *billing.Detector
	metrics    *observability.Metrics
}

// NewBillingHandler constructs handler.
func NewBillingHandler(calculator *billing.Calculator, detector *billing.Detector, metrics *observability.Metrics) *BillingHandler {
	return &BillingHandler{calculator: calculator, detector: detector, metrics: metrics}
}

// CalculateBill handles POST /calculate-bill.
func (h *BillingHandler) CalculateBill(c *fiber.Ctx) error {
	var req dto.CalculateBillRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	usage, ok := req.Usage.Float()
	if !ok {
		return apperrors.NewValidationError("Valid usage value is required", nil)
	}

	bill, err := h.calculator.Calculate(usage)
	if err != nil {
		return apperrors.NewValidationError("Valid usage value is required", nil)
	}
	h.metrics.RecordBill()
	return c.JSON(dto.NewBillResponse(bill))
}

// DetectAnomalies handles POST /detect-anomalies.
func (h *BillingHandler) DetectAnomalies(c *fiber.Ctx) error {
	var req dto.DetectAnomaliesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	history, err := req.History()
	if err != nil {
		return apperrors.NewValidationError("Valid usageHistory array is required", nil)
	}

	report, err := h.detector.Detect(history)
	if err != nil {
		return apperrors.NewValidationError("Valid usageHistory array is required", nil)
	}
	h.metrics.RecordAnomalyCheck(report.IsAnomaly)
	return c.JSON(dto.NewAnomalyResponse(report))
}
