package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/voltai/billing-service/internal/api/dto"
	"github.com/voltai/billing-service/internal/service"
	apperrors "github.com/voltai/billing-service/pkg/util/errorutil"
)

// CustomersHandler exposes the customer registry.
type CustomersHandler struct {
	customers *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customers *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

// List handles GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	customers, err := h.customers.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerListResponse(customers))
}

// Create handles POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	usage, ok := req.Usage()
	if !ok {
		return apperrors.NewValidationError("Valid usage value is required", map[string]any{"field": "monthly_usage"})
	}

	customer, err := h.customers.Create(c.UserContext(), service.CustomerCreateInput{
		Name:         req.Name,
		Address:      req.Address,
		MonthlyUsage: usage,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CustomerMutationResponse{
		Success:  true,
		Customer: dto.NewCustomerResponse(customer),
		Message:  "Customer added successfully",
	})
}

// UpdateUsage handles PUT /customers/:id/usage.
func (h *CustomersHandler) UpdateUsage(c *fiber.Ctx) error {
	id, err := customerIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUsageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	usage, ok := req.Usage.Float()
	if !ok {
		return apperrors.NewValidationError("Valid usage value is required", map[string]any{"field": "usage"})
	}

	customer, err := h.customers.UpdateUsage(c.UserContext(), id, usage)
	if err != nil {
		return err
	}
	return c.JSON(dto.CustomerMutationResponse{
		Success:  true,
		Customer: dto.NewCustomerResponse(customer),
		Message:  "Usage updated successfully",
	})
}

// Delete handles DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	id, err := customerIDParam(c)
	if err != nil {
		return err
	}
	if err := h.customers.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.CustomerMutationResponse{Success: true, Message: "Customer deleted successfully"})
}

// AcknowledgeAlert handles POST /customers/:id/alert/acknowledge.
func (h *CustomersHandler) AcknowledgeAlert(c *fiber.Ctx) error {
	id, err := customerIDParam(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.AcknowledgeAlert(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.CustomerMutationResponse{
		Success:  true,
		Customer: dto.NewCustomerResponse(customer),
		Message:  "Alert acknowledged",
	})
}

// Stats handles GET /customers/stats.
func (h *CustomersHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.customers.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCustomerStatsResponse(stats))
}
