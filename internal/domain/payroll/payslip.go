package payroll

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"

	"paysheet/internal/domain/employee"
)

// Payslip is everything printed on one employee's slip.
type Payslip struct {
	Employee employee.Employee
	Result   Result
	IssuedAt time.Time
}

// RenderPayslip writes an A4 PDF for slip to w.
func RenderPayslip(w io.Writer, slip Payslip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			return r
		}, s))
	}

	emp := slip.Employee
	res := slip.Result
	calc := res.Calculation

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(60, 7, text(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, text(value), "", 1, "L", false, 0, "")
	}
	line("Employee", fmt.Sprintf("%s (%s)", emp.Name, emp.ExternalID))
	if emp.Position != "" || emp.Department != "" {
		line("Position", strings.Trim(emp.Position+" / "+emp.Department, " /"))
	}
	if emp.TaxID != "" {
		line("Tax ID", emp.TaxID)
	}
	line("Period", fmt.Sprintf("%s to %s", res.Period.Start.Format(time.DateOnly), res.Period.End.Format(time.DateOnly)))
	if !slip.IssuedAt.IsZero() {
		line("Issued", slip.IssuedAt.Format(time.DateOnly))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Hours")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("Regular", FormatHours(calc.RegularHours))
	line("Overtime", FormatHours(calc.OvertimeHours))
	line("Weekend", FormatHours(calc.WeekendHours))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings and deductions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("Base salary", FormatCurrency(res.BaseSalary))
	line("Hourly rate", FormatCurrency(res.HourlyRate))
	line("Gross", FormatCurrency(calc.TotalAmount))
	if calc.Deductions.BreakTime > 0 {
		line("Break time", "-"+FormatCurrency(calc.Deductions.BreakTime))
	}
	line("IRPS", "-"+FormatCurrency(calc.Deductions.IRPS))
	line("Social security", "-"+FormatCurrency(calc.Deductions.SocialSecurity))

	pdf.SetFont("Helvetica", "B", 12)
	line("Net pay", FormatCurrency(calc.NetAmount))

	if emp.Bank.AccountNumber != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 10)
		line("Paid to", strings.TrimSpace(emp.Bank.BankName+" "+emp.Bank.AccountNumber))
	}

	return pdf.Output(w)
}
