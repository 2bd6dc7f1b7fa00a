package payroll

import "errors"

var (
	ErrInvalidRange   = errors.New("start date must be before end date")
	ErrMissingRange   = errors.New("start and end dates are required")
	ErrInvalidSalary  = errors.New("base salary must not be negative")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrInvalidRules   = errors.New("invalid payroll rules")
)
