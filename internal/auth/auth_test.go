package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltai/billing-service/internal/domain"
	"github.com/voltai/billing-service/internal/repository"
	apperrors "github.com/voltai/billing-service/pkg/util/errorutil"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, err := tm.GenerateToken(42, domain.EmployeeRoleOperator)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token.Value)
	require.NoError(t, err)
	id, err := claims.EmployeeID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, domain.EmployeeRoleOperator, claims.Role)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("one", 5).GenerateToken(1, domain.EmployeeRoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5).ParseToken(token.Value)
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "hunter2"))
	assert.Error(t, ComparePassword(hash, "hunter3"))
}

func newProtectedApp(t *testing.T, employees repository.EmployeeRepository, tm *TokenManager, roles ...domain.EmployeeRole) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, employees)
	app.Get("/secure", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(principal.Employee.Email)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	ctx := context.Background()
	employees := repository.NewMemoryEmployeeRepository()
	operator := &domain.Employee{Name: "Op", Email: "op@voltai.com", Role: domain.EmployeeRoleOperator, Active: true}
	require.NoError(t, employees.Create(ctx, operator))
	inactive := &domain.Employee{Name: "Gone", Email: "gone@voltai.com", Role: domain.EmployeeRoleAdmin}
	require.NoError(t, employees.Create(ctx, inactive))

	tm := NewTokenManager("secret", 5)
	opToken, err := tm.GenerateToken(operator.ID, operator.Role)
	require.NoError(t, err)
	goneToken, err := tm.GenerateToken(inactive.ID, inactive.Role)
	require.NoError(t, err)
	ghostToken, err := tm.GenerateToken(999, domain.EmployeeRoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		roles  []domain.EmployeeRole
		status int
	}{
		{name: "no header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "unknown employee", header: "Bearer " + ghostToken.Value, status: http.StatusUnauthorized},
		{name: "inactive employee", header: "Bearer " + goneToken.Value, status: http.StatusUnauthorized},
		{name: "authenticated", header: "Bearer " + opToken.Value, status: http.StatusOK},
		{name: "role allowed", header: "Bearer " + opToken.Value, roles: []domain.EmployeeRole{domain.EmployeeRoleOperator, domain.EmployeeRoleAdmin}, status: http.StatusOK},
		{name: "role denied", header: "Bearer " + opToken.Value, roles: []domain.EmployeeRole{domain.EmployeeRoleAdmin}, status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(t, employees, tm, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireAuthenticated_WithoutPrincipal(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/", RequireAuthenticated(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
