package employee

import "time"

const (
	EmploymentFullTime = "Full Time"
	EmploymentPartTime = "Part Time"
	EmploymentContract = "Contract"
)

var EmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentContract}

type Employee struct {
	ID             string       `json:"id"`
	ExternalID     string       `json:"employeeId"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	TaxID          string       `json:"taxId"`
	Department     string       `json:"department"`
	Position       string       `json:"position"`
	EmploymentType string       `json:"employmentType"`
	StartDate      *time.Time   `json:"startDate,omitempty"`
	WorkLocation   string       `json:"workLocation,omitempty"`
	Bank           BankInfo     `json:"banking"`
	Address        Address      `json:"address"`
	Compensation   Compensation `json:"compensation"`
	CreatedAt      time.Time    `json:"createdAt,omitzero"`
	UpdatedAt      time.Time    `json:"updatedAt,omitzero"`
}

type BankInfo struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country"`
}

// Compensation is the monthly pay package used for one calculation.
type Compensation struct {
	BaseSalary float64    `json:"baseSalary"`
	Allowances Allowances `json:"allowances"`
}

type Allowances struct {
	Food          float64 `json:"food"`
	Communication float64 `json:"communication"`
	Attendance    float64 `json:"attendance"`
	Assiduity     float64 `json:"assiduity"`
}

func (a Allowances) Total() float64 {
	return a.Food + a.Communication + a.Attendance + a.Assiduity
}

// GrossSalary is the base salary plus every allowance.
func (c Compensation) GrossSalary() float64 {
	return c.BaseSalary + c.Allowances.Total()
}
