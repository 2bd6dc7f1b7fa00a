package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"paysheet/internal/domain/auth"
	"paysheet/internal/domain/employee"
	"paysheet/internal/domain/payroll"
	"paysheet/internal/domain/timesheet"
	"paysheet/internal/requestctx"
)

type employees map[string]employee.Employee

func (e employees) Get(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := e[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

type entries []timesheet.Entry

func (e entries) ListEntries(_ context.Context, filter timesheet.Filter) ([]timesheet.Entry, error) {
	var out []timesheet.Entry
	for _, entry := range e {
		if entry.EmployeeID == filter.EmployeeID && !entry.EntryDate.Before(filter.From) && !entry.EntryDate.After(filter.To) {
			out = append(out, entry)
		}
	}
	return out, nil
}

type counter struct {
	calculations, payslips int
}

func (c *counter) Calculation() { c.calculations++ }
func (c *counter) Payslip()     { c.payslips++ }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(v string) *string { return &v }

func newRouter(role string) (http.Handler, *counter) {
	emps := employees{
		"emp-1": {
			ID: "emp-1", ExternalID: "CV001", Name: "Ana Tavares",
			Bank:         employee.BankInfo{BankName: "BCA", AccountNumber: "0001"},
			Compensation: employee.Compensation{BaseSalary: 35200},
		},
	}
	work := entries{
		{EmployeeID: "emp-1", EntryDate: day(2024, 3, 4), ClockIn: clock("08:00"), ClockOut: clock("19:00"), TotalHours: 10, BreakTime: 1, Status: timesheet.StatusRegular},
		{EmployeeID: "emp-1", EntryDate: day(2024, 3, 9), ClockIn: clock("08:00"), ClockOut: clock("12:00"), TotalHours: 4, Status: timesheet.StatusRegular},
		{EmployeeID: "emp-1", EntryDate: day(2024, 4, 1), ClockIn: clock("08:00"), ClockOut: clock("16:00"), TotalHours: 8, Status: timesheet.StatusRegular},
	}
	metrics := &counter{}
	svc := payroll.NewService(emps, work, payroll.DefaultRules())
	h := NewHandler(svc, auth.StaticPermissions{}, metrics)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestctx.WithUser(req.Context(), requestctx.User{UserID: "u1", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r)
	return r, metrics
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCalculate(t *testing.T) {
	router, metrics := newRouter(auth.RolePayroll)

	rec := do(router, http.MethodPost, "/payroll/calculate", `{"employeeId":"emp-1","startDate":"2024-03-01","endDate":"2024-03-31"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			HourlyRate  float64             `json:"hourlyRate"`
			EntryCount  int                 `json:"entryCount"`
			Calculation payroll.Calculation `json:"calculation"`
			Formatted   map[string]string   `json:"formatted"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	calc := body.Data.Calculation
	assert.Equal(t, 200.0, body.Data.HourlyRate)
	assert.Equal(t, 2, body.Data.EntryCount)
	assert.Equal(t, 8.0, calc.RegularHours)
	assert.Equal(t, 2.0, calc.OvertimeHours)
	assert.Equal(t, 4.0, calc.WeekendHours)
	assert.Equal(t, 37400.0, calc.TotalAmount)
	assert.Equal(t, 3553.0, calc.Deductions.IRPS)
	assert.InDelta(t, 3179.0, calc.Deductions.SocialSecurity, 1e-9)
	assert.InDelta(t, 30668.0, calc.NetAmount, 1e-9)
	assert.True(t, strings.HasSuffix(body.Data.Formatted["netAmount"], " CVE"))
	assert.Equal(t, 1, metrics.calculations)
}

func TestCalculateWithRuleOverrides(t *testing.T) {
	router, _ := newRouter(auth.RolePayroll)

	rec := do(router, http.MethodPost, "/payroll/calculate", `{
		"employeeId":"emp-1","startDate":"2024-03-01","endDate":"2024-03-31",
		"rules":{"breakDeduction":true,"weekendMultiplier":1}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Calculation payroll.Calculation `json:"calculation"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	calc := body.Data.Calculation
	// 10h minus a 1h break leaves 8 regular and 1 overtime; the Saturday pays 4h at 1x.
	assert.Equal(t, 8.0, calc.RegularHours)
	assert.Equal(t, 1.0, calc.OvertimeHours)
	assert.Equal(t, 36300.0, calc.TotalAmount)
	assert.Equal(t, 200.0, calc.Deductions.BreakTime)

	rec = do(router, http.MethodPost, "/payroll/calculate", `{
		"employeeId":"emp-1","startDate":"2024-03-01","endDate":"2024-03-31",
		"rules":{"maxRegularHours":-1}
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateErrors(t *testing.T) {
	router, metrics := newRouter(auth.RolePayroll)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"inverted range", `{"employeeId":"emp-1","startDate":"2024-03-31","endDate":"2024-03-01"}`, http.StatusBadRequest, "invalid_range"},
		{"missing range", `{"employeeId":"emp-1"}`, http.StatusBadRequest, "invalid_range"},
		{"unknown employee", `{"employeeId":"emp-9","startDate":"2024-03-01","endDate":"2024-03-31"}`, http.StatusNotFound, "employee_not_found"},
		{"unparseable date", `{"employeeId":"emp-1","startDate":"March","endDate":"2024-03-31"}`, http.StatusBadRequest, "validation_error"},
		{"missing employee", `{"startDate":"2024-03-01","endDate":"2024-03-31"}`, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/payroll/calculate", tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
	assert.Zero(t, metrics.calculations)
}

func TestCalculateRequiresRunPermission(t *testing.T) {
	router, _ := newRouter(auth.RoleViewer)
	rec := do(router, http.MethodPost, "/payroll/calculate", `{"employeeId":"emp-1","startDate":"2024-03-01","endDate":"2024-03-31"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWeekly(t *testing.T) {
	router, _ := newRouter(auth.RoleViewer)

	rec := do(router, http.MethodGet, "/payroll/weekly?employeeId=emp-1&startDate=2024-03-01&endDate=2024-04-30&month=2024-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data payroll.WeeklyReport `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"2024-03", "2024-04"}, body.Data.Months)
	require.Len(t, body.Data.Weeks, 1)
	week := body.Data.Weeks[0]
	assert.Equal(t, "2024-03-03", week.WeekStart.Format(time.DateOnly))
	assert.Equal(t, "2024-03-09", week.WeekEnd.Format(time.DateOnly))
	assert.Equal(t, 12.0, week.RegularHours)

	rec = do(router, http.MethodGet, "/payroll/weekly?employeeId=emp-1&startDate=2024-03-01&endDate=2024-04-30&month=March", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeeklyWorkbook(t *testing.T) {
	router, _ := newRouter(auth.RoleViewer)

	rec := do(router, http.MethodGet, "/payroll/weekly?employeeId=emp-1&startDate=2024-03-01&endDate=2024-04-30&format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Weekly")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 7)
	assert.Equal(t, "Week Start", rows[3][0])
	assert.Equal(t, "2024-03-03", rows[4][0])
	assert.Equal(t, "2024-03-31", rows[5][0])
	assert.Equal(t, "Total", rows[6][0])
}

func TestTax(t *testing.T) {
	router, _ := newRouter(auth.RoleViewer)

	rec := do(router, http.MethodGet, "/payroll/tax?amount=50000", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			IncomeTax      float64           `json:"incomeTax"`
			SocialSecurity float64           `json:"socialSecurity"`
			Net            float64           `json:"net"`
			Bracket        *payroll.Bracket  `json:"bracket"`
			Brackets       []payroll.Bracket `json:"brackets"`
			Formatted      map[string]string `json:"formatted"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1875.0, body.Data.IncomeTax)
	assert.InDelta(t, 4250.0, body.Data.SocialSecurity, 1e-9)
	assert.InDelta(t, 43875.0, body.Data.Net, 1e-9)
	require.NotNil(t, body.Data.Bracket)
	assert.Equal(t, "First Bracket", body.Data.Bracket.Description)
	assert.Len(t, body.Data.Brackets, 4)
	assert.True(t, strings.HasSuffix(body.Data.Formatted["incomeTax"], " CVE"))

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/payroll/tax?amount=-5", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/payroll/tax", "").Code)
}

func TestPayslip(t *testing.T) {
	router, metrics := newRouter(auth.RolePayroll)

	rec := do(router, http.MethodPost, "/payroll/payslip", `{"employeeId":"emp-1","startDate":"2024-03-01","endDate":"2024-03-31"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip_20240301_20240331.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	assert.Equal(t, 1, metrics.payslips)
}
