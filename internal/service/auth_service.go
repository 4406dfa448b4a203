package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/voltai/billing-service/internal/auth"
	"github.com/voltai/billing-service/internal/config"
	"github.com/voltai/billing-service/internal/domain"
	"github.com/voltai/billing-service/internal/repository"
	apperrors "github.com/voltai/billing-service/pkg/util/errorutil"
)

// AuthService coordinates employee login and the bootstrap admin account.
type AuthService struct {
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, employees repository.EmployeeRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		employees:  employees,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates an employee and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Employee, domain.Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Token{}, apperrors.NewValidationError("email and password required", nil)
	}

	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
		}
		s.logger.Error("load employee failed", zap.Error(err))
		return nil, domain.Token{}, apperrors.NewStorageError("load employee", err)
	}
	if !employee.Active {
		return nil, domain.Token{}, apperrors.NewUnauthorized("employee inactive")
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, err := s.tokenMgr.GenerateToken(employee.ID, employee.Role)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	return employee, token, nil
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet. An empty
// password disables the bootstrap.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.logger.Info("bootstrap admin not configured")
		return nil, nil
	}

	existing, err := s.employees.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &domain.Employee{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.EmployeeRoleAdmin,
		Active:       true,
	}
	if err := s.employees.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	return admin, nil
}
