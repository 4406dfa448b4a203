package domain

import "time"

// EmployeeRole enumerates dashboard operator roles.
type EmployeeRole string

const (
	EmployeeRoleOperator EmployeeRole = "OPERATOR"
	EmployeeRoleAdmin    EmployeeRole = "ADMIN"
)

// Employee models a utility staff member using the dashboard.
type Employee struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         EmployeeRole
	Active       bool
	CreatedAt    time.Time
}
