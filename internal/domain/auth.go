package domain

import "time"

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	SubjectID int64
	Role      EmployeeRole
	ExpiresAt time.Time
}
