package employee

import (
	"net/mail"
	"slices"
	"strings"
)

type Issue struct {
	Field  string
	Reason string
}

// Validate checks the fields an employee record needs before it is stored.
func Validate(emp Employee) []Issue {
	var issues []Issue
	if strings.TrimSpace(emp.ExternalID) == "" {
		issues = append(issues, Issue{"employeeId", "is required"})
	}
	if strings.TrimSpace(emp.Name) == "" {
		issues = append(issues, Issue{"name", "is required"})
	}
	if emp.Email != "" {
		if _, err := mail.ParseAddress(emp.Email); err != nil {
			issues = append(issues, Issue{"email", "must be a valid email address"})
		}
	}
	if emp.EmploymentType != "" && !slices.Contains(EmploymentTypes, emp.EmploymentType) {
		issues = append(issues, Issue{"employmentType", "must be one of: " + strings.Join(EmploymentTypes, ", ")})
	}
	if emp.Compensation.BaseSalary <= 0 {
		issues = append(issues, Issue{"compensation.baseSalary", "must be positive"})
	}
	a := emp.Compensation.Allowances
	if a.Food < 0 || a.Communication < 0 || a.Attendance < 0 || a.Assiduity < 0 {
		issues = append(issues, Issue{"compensation.allowances", "must not be negative"})
	}
	return issues
}
