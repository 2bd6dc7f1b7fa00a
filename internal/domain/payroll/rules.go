package payroll

import (
	"errors"
	"fmt"
)

// Rules configures the period-level calculator.
type Rules struct {
	MaxRegularHours    float64 `json:"maxRegularHours"`
	MaxOvertimeHours   float64 `json:"maxOvertimeHours"`
	OvertimeMultiplier float64 `json:"overtimeMultiplier"`
	WeekendMultiplier  float64 `json:"weekendMultiplier"`
	BreakDeduction     bool    `json:"breakDeduction"`
	MinimumBreakHours  float64 `json:"minimumBreakHours"`
}

func DefaultRules() Rules {
	return Rules{
		MaxRegularHours:    8,
		MaxOvertimeHours:   4,
		OvertimeMultiplier: 1.5,
		WeekendMultiplier:  2,
		BreakDeduction:     false,
		MinimumBreakHours:  0.5,
	}
}

// RulesOverride holds caller-supplied values; nil fields keep the base value.
type RulesOverride struct {
	MaxRegularHours    *float64 `json:"maxRegularHours"`
	MaxOvertimeHours   *float64 `json:"maxOvertimeHours"`
	OvertimeMultiplier *float64 `json:"overtimeMultiplier"`
	WeekendMultiplier  *float64 `json:"weekendMultiplier"`
	BreakDeduction     *bool    `json:"breakDeduction"`
	MinimumBreakHours  *float64 `json:"minimumBreakHours"`
}

func (r Rules) With(o RulesOverride) Rules {
	if o.MaxRegularHours != nil {
		r.MaxRegularHours = *o.MaxRegularHours
	}
	if o.MaxOvertimeHours != nil {
		r.MaxOvertimeHours = *o.MaxOvertimeHours
	}
	if o.OvertimeMultiplier != nil {
		r.OvertimeMultiplier = *o.OvertimeMultiplier
	}
	if o.WeekendMultiplier != nil {
		r.WeekendMultiplier = *o.WeekendMultiplier
	}
	if o.BreakDeduction != nil {
		r.BreakDeduction = *o.BreakDeduction
	}
	if o.MinimumBreakHours != nil {
		r.MinimumBreakHours = *o.MinimumBreakHours
	}
	return r
}

func (r Rules) Validate() error {
	var errs []error
	if r.MaxRegularHours < 0 {
		errs = append(errs, errors.New("maxRegularHours must not be negative"))
	}
	if r.MaxOvertimeHours < 0 {
		errs = append(errs, errors.New("maxOvertimeHours must not be negative"))
	}
	if r.OvertimeMultiplier < 0 {
		errs = append(errs, errors.New("overtimeMultiplier must not be negative"))
	}
	if r.WeekendMultiplier < 0 {
		errs = append(errs, errors.New("weekendMultiplier must not be negative"))
	}
	if r.MinimumBreakHours < 0 {
		errs = append(errs, errors.New("minimumBreakHours must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	return nil
}

// Key identifies a rule set in cache keys.
func (r Rules) Key() string {
	return fmt.Sprintf("%g:%g:%g:%g:%t:%g", r.MaxRegularHours, r.MaxOvertimeHours, r.OvertimeMultiplier,
		r.WeekendMultiplier, r.BreakDeduction, r.MinimumBreakHours)
}
