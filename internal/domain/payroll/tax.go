package payroll

import "math"

// Bracket is one band of the progressive income-tax table. A nil Max marks
// the unbounded top band.
type Bracket struct {
	Min         float64  `json:"min"`
	Max         *float64 `json:"max"`
	Rate        float64  `json:"rate"`
	Deduction   float64  `json:"deduction"`
	Description string   `json:"description"`
}

func (b Bracket) contains(amount float64) bool {
	return amount >= b.Min && (b.Max == nil || amount <= *b.Max)
}

func bound(v float64) *float64 { return &v }

// IRPSBrackets is the Cape Verde income-tax table.
var IRPSBrackets = []Bracket{
	{Min: 0, Max: bound(36606), Rate: 0, Deduction: 0, Description: "Tax Free"},
	{Min: 36607, Max: bound(80000), Rate: 0.14, Deduction: 5125, Description: "First Bracket"},
	{Min: 80001, Max: bound(150000), Rate: 0.21, Deduction: 10725, Description: "Second Bracket"},
	{Min: 150001, Max: nil, Rate: 0.25, Deduction: 16725, Description: "Third Bracket"},
}

// IncomeTax applies IRPSBrackets to amount.
func IncomeTax(amount float64) float64 {
	return BracketTax(IRPSBrackets, amount)
}

// BracketTax finds the band containing amount and returns
// max(0, round(amount*rate) - deduction). Amounts at or below the top of
// the first band, or between bands, owe nothing.
func BracketTax(brackets []Bracket, amount float64) float64 {
	if len(brackets) == 0 {
		return 0
	}
	if first := brackets[0]; first.Max != nil && amount <= *first.Max {
		return 0
	}
	for _, b := range brackets {
		if !b.contains(amount) {
			continue
		}
		return math.Max(0, roundHalfUp(amount*b.Rate)-b.Deduction)
	}
	return 0
}

// FlatIncomeTax is the simplified IRPS figure used by Calculate.
func FlatIncomeTax(gross float64) float64 {
	return roundHalfUp(gross * FlatIncomeTaxRate)
}

// SocialSecurity is the employee contribution, uncapped.
func SocialSecurity(amount float64) float64 {
	return amount * SocialSecurityRate
}

func EmployerSocialSecurity(amount float64) float64 {
	return amount * EmployerSocialSecurityRate
}

// TaxEstimate is a stand-alone deduction estimate for a gross amount.
type TaxEstimate struct {
	Gross                  float64   `json:"gross"`
	IncomeTax              float64   `json:"incomeTax"`
	SocialSecurity         float64   `json:"socialSecurity"`
	EmployerSocialSecurity float64   `json:"employerSocialSecurity"`
	Net                    float64   `json:"net"`
	Bracket                *Bracket  `json:"bracket,omitempty"`
	Brackets               []Bracket `json:"brackets"`
}

func EstimateTax(gross float64) (TaxEstimate, error) {
	if gross < 0 || math.IsNaN(gross) {
		return TaxEstimate{}, ErrNegativeAmount
	}
	est := TaxEstimate{
		Gross:                  gross,
		IncomeTax:              IncomeTax(gross),
		SocialSecurity:         SocialSecurity(gross),
		EmployerSocialSecurity: EmployerSocialSecurity(gross),
		Brackets:               IRPSBrackets,
	}
	for i := range IRPSBrackets {
		if IRPSBrackets[i].contains(gross) {
			b := IRPSBrackets[i]
			est.Bracket = &b
			break
		}
	}
	est.Net = gross - est.IncomeTax - est.SocialSecurity
	return est, nil
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
