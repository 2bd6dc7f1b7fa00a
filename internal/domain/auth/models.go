package auth

import "time"

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	EmployeeID   *string    `json:"employeeId,omitempty"`
	Status       string     `json:"status"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitzero"`
}
