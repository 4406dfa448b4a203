package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltai/billing-service/internal/api/http/handlers"
	"github.com/voltai/billing-service/internal/auth"
	"github.com/voltai/billing-service/internal/billing"
	"github.com/voltai/billing-service/internal/config"
	"github.com/voltai/billing-service/internal/domain"
	"github.com/voltai/billing-service/internal/observability"
	"github.com/voltai/billing-service/internal/repository"
	"github.com/voltai/billing-service/internal/service"
)

type testServer struct {
	app       *fiber.App
	employees repository.EmployeeRepository
	auth      *service.AuthService
}

func newTestServer(t *testing.T, enforceAuth bool) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	calculator := billing.NewCalculator(0.15)
	customers := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: repository.NewMemoryCustomerRepository(),
		Calculator:   calculator,
		Logger:       logger,
		Metrics:      metrics,
		Threshold:    800,
	})
	employees := repository.NewMemoryEmployeeRepository()
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}, employees, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0, "*")
	RegisterRoutes(app, RouteConfig{
		Info:           handlers.NewInfoHandler("1.0.0", "In-memory (temporary)"),
		Health:         handlers.NewHealthHandler("voltai-backend", "1.0.0", customers, nil, nil, logger),
		Customers:      handlers.NewCustomersHandler(customers),
		Billing:        handlers.NewBillingHandler(calculator, billing.NewDetector(1.5), metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), employees),
		EnforceAuth:    enforceAuth,
	})
	return &testServer{app: app, employees: employees, auth: authService}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (int, map[string]any, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded, raw
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	return errBody["code"].(string)
}

func TestRoutes_Index(t *testing.T) {
	srv := newTestServer(t, false)

	status, body, _ := srv.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "VoltAI Backend is running!", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "In-memory (temporary)", body["database"])
}

func TestRoutes_CustomerLifecycle(t *testing.T) {
	srv := newTestServer(t, false)

	status, body, _ := srv.do(t, http.MethodPost, "/customers", `{"name":"A","address":"B","initialUsage":850}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Customer added successfully", body["message"])
	customer := body["customer"].(map[string]any)
	assert.Equal(t, "High Usage", customer["alert"])
	assert.InDelta(t, 850, customer["monthly_usage"].(float64), 1e-9)
	id := int64(customer["id"].(float64))
	idPath := "/customers/" + jsonNumber(id)

	status, body, _ = srv.do(t, http.MethodPut, idPath+"/usage", `{"usage":500}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Usage updated successfully", body["message"])
	assert.Nil(t, body["customer"].(map[string]any)["alert"])

	status, body, _ = srv.do(t, http.MethodPut, idPath+"/usage", `{"usage":"900"}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "High Usage", body["customer"].(map[string]any)["alert"])

	status, _, raw := srv.do(t, http.MethodGet, "/customers", "", "")
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0]["name"])
	assert.InDelta(t, 900, list[0]["monthly_usage"].(float64), 1e-9)

	status, body, _ = srv.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.InDelta(t, 1, body["customers"].(float64), 1e-9)
	assert.NotEmpty(t, body["timestamp"])

	status, body, _ = srv.do(t, http.MethodDelete, idPath, "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Customer deleted successfully", body["message"])
	_, hasCustomer := body["customer"]
	assert.False(t, hasCustomer)

	status, _, raw = srv.do(t, http.MethodGet, "/customers", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRoutes_CustomerErrors(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "missing address", method: http.MethodPost, path: "/customers", body: `{"name":"A"}`, status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "non numeric usage", method: http.MethodPost, path: "/customers", body: `{"name":"A","address":"B","initialUsage":"lots"}`, status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "negative usage", method: http.MethodPost, path: "/customers", body: `{"name":"A","address":"B","monthly_usage":-4}`, status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "delete unknown", method: http.MethodDelete, path: "/customers/999", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "update unknown", method: http.MethodPut, path: "/customers/999/usage", body: `{"usage":10}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "update missing usage", method: http.MethodPut, path: "/customers/1/usage", body: `{}`, status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "bad id", method: http.MethodDelete, path: "/customers/abc", status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "acknowledge unknown", method: http.MethodPost, path: "/customers/999/alert/acknowledge", status: http.StatusNotFound, code: "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := srv.do(t, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}
}

func TestRoutes_AcknowledgeAndStats(t *testing.T) {
	srv := newTestServer(t, false)

	_, _, _ = srv.do(t, http.MethodPost, "/customers", `{"name":"A","address":"B","initialUsage":450}`, "")
	_, created, _ := srv.do(t, http.MethodPost, "/customers", `{"name":"C","address":"D","initialUsage":890}`, "")
	id := int64(created["customer"].(map[string]any)["id"].(float64))

	status, body, _ := srv.do(t, http.MethodPost, "/customers/1/alert/acknowledge", "", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, body, _ = srv.do(t, http.MethodPost, "/customers/"+jsonNumber(id)+"/alert/acknowledge", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["customer"].(map[string]any)["alert_acknowledged"])

	status, body, _ = srv.do(t, http.MethodGet, "/customers/stats", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 2, body["total_customers"].(float64), 1e-9)
	assert.InDelta(t, 0, body["active_alerts"].(float64), 1e-9)
	assert.InDelta(t, 1, body["acknowledged_alerts"].(float64), 1e-9)
	assert.InDelta(t, 1340, body["total_usage"].(float64), 1e-9)
	assert.InDelta(t, 201, body["total_revenue"].(float64), 1e-9)
}

func TestRoutes_CalculateBill(t *testing.T) {
	srv := newTestServer(t, false)

	status, _, raw := srv.do(t, http.MethodPost, "/calculate-bill", `{"usage":350}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"usage":350,"amount":52.5,"rate":0.15,"message":"Bill calculated for 350 kWh"}`, string(raw))

	for _, body := range []string{`{}`, `{"usage":"abc"}`, `{"usage":-1}`} {
		status, decoded, _ := srv.do(t, http.MethodPost, "/calculate-bill", body, "")
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, decoded))
	}
}

func TestRoutes_DetectAnomalies(t *testing.T) {
	srv := newTestServer(t, false)

	status, body, _ := srv.do(t, http.MethodPost, "/detect-anomalies", `{"usageHistory":[100,100,100,400]}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isAnomaly"])
	assert.InDelta(t, 175, body["averageUsage"].(float64), 1e-9)
	assert.InDelta(t, 400, body["latestUsage"].(float64), 1e-9)
	assert.InDelta(t, 128.57, body["percentageChange"].(float64), 1e-9)
	assert.Equal(t, "High usage detected! 128.57% above average", body["message"])

	status, body, _ = srv.do(t, http.MethodPost, "/detect-anomalies", `{"usageHistory":[]}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Valid usageHistory array is required", body["error"].(map[string]any)["message"])
}

func TestRoutes_Metrics(t *testing.T) {
	srv := newTestServer(t, false)
	_, _, _ = srv.do(t, http.MethodPost, "/calculate-bill", `{"usage":10}`, "")

	status, _, raw := srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.Contains(raw, []byte("voltai_billing_bills_calculated_total")))
}

func TestRoutes_EnforcedAuth(t *testing.T) {
	srv := newTestServer(t, true)
	ctx := context.Background()

	_, err := srv.auth.EnsureAdmin(ctx, "Admin", "admin@voltai.com", "s3cret")
	require.NoError(t, err)
	hash, err := auth.HashPassword("operator", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, srv.employees.Create(ctx, &domain.Employee{
		Name: "Op", Email: "op@voltai.com", PasswordHash: hash, Role: domain.EmployeeRoleOperator, Active: true,
	}))

	status, body, _ := srv.do(t, http.MethodGet, "/customers", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, body, _ = srv.do(t, http.MethodPost, "/auth/login", `{"email":"op@voltai.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	opToken := login(t, srv, "op@voltai.com", "operator")
	adminToken := login(t, srv, "admin@voltai.com", "s3cret")

	status, body, _ = srv.do(t, http.MethodGet, "/auth/me", "", opToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OPERATOR", body["data"].(map[string]any)["role"])

	status, body, _ = srv.do(t, http.MethodPost, "/customers", `{"name":"A","address":"B"}`, opToken)
	require.Equal(t, http.StatusOK, status)
	id := int64(body["customer"].(map[string]any)["id"].(float64))

	status, _, _ = srv.do(t, http.MethodDelete, "/customers/"+jsonNumber(id), "", opToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = srv.do(t, http.MethodDelete, "/customers/"+jsonNumber(id), "", adminToken)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = srv.do(t, http.MethodPost, "/calculate-bill", `{"usage":1}`, "")
	assert.Equal(t, http.StatusOK, status)
}

func login(t *testing.T, srv *testServer, email, password string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	status, body, _ := srv.do(t, http.MethodPost, "/auth/login", string(payload), "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestRoutes_Probes(t *testing.T) {
	srv := newTestServer(t, false)

	status, body, _ := srv.do(t, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = srv.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
	assert.Empty(t, body["dependencies"])

	status, body, _ = srv.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestRoutes_OversizedUsageIsRejected(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "bill", path: "/calculate-bill", body: `{"usage":1e308}`},
		{name: "anomaly history", path: "/detect-anomalies", body: `{"usageHistory":[1e308,1e308]}`},
		{name: "customer", path: "/customers", body: `{"name":"A","address":"B","initialUsage":1e308}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := srv.do(t, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
		})
	}

	status, body, _ := srv.do(t, http.MethodPost, "/customers", `{"name":"A","address":"B","initialUsage":1e12}`, "")
	require.Equal(t, http.StatusOK, status)
	id := int64(body["customer"].(map[string]any)["id"].(float64))

	status, _, _ = srv.do(t, http.MethodPut, "/customers/"+jsonNumber(id)+"/usage", `{"usage":1e308}`, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body, _ = srv.do(t, http.MethodGet, "/customers/stats", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 1.5e11, body["total_revenue"].(float64), 1e-3)
}

func TestRoutes_CustomerFieldsStoredAsSubmitted(t *testing.T) {
	srv := newTestServer(t, false)

	status, body, _ := srv.do(t, http.MethodPost, "/customers", `{"name":"  Ann ","address":" 1 Main St ","initialUsage":10}`, "")
	require.Equal(t, http.StatusOK, status)
	customer := body["customer"].(map[string]any)
	assert.Equal(t, "  Ann ", customer["name"])
	assert.Equal(t, " 1 Main St ", customer["address"])

	status, _, raw := srv.do(t, http.MethodGet, "/customers", "", "")
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "  Ann ", list[0]["name"])
	assert.Equal(t, " 1 Main St ", list[0]["address"])

	status, body, _ = srv.do(t, http.MethodPost, "/customers", `{"name":"   ","address":"B"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
}

func TestRoutes_AnomalyHistoryAcceptsNegativeReadings(t *testing.T) {
	srv := newTestServer(t, false)

	status, body, _ := srv.do(t, http.MethodPost, "/detect-anomalies", `{"usageHistory":[100,100,-50,400]}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isAnomaly"])
	assert.InDelta(t, 137.5, body["averageUsage"].(float64), 1e-9)
}
