package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paysheet/internal/domain/auth"
	"paysheet/internal/domain/employee"
	"paysheet/internal/domain/payroll"
	"paysheet/internal/transport/http/api"
	"paysheet/internal/transport/http/middleware"
	"paysheet/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Calculate(ctx context.Context, req payroll.Request) (payroll.Result, error)
	Weekly(ctx context.Context, employeeID string, period payroll.Period, month string) (payroll.WeeklyReport, error)
	Payslip(ctx context.Context, req payroll.Request, w io.Writer) (payroll.Result, error)
	Rules() payroll.Rules
}

type Recorder interface {
	Calculation()
	Payslip()
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionChecker
	Metrics Recorder
}

func NewHandler(service Service, perms middleware.PermissionChecker, metrics Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Metrics: metrics}
}

type calculateRequest struct {
	EmployeeID string                `json:"employeeId"`
	StartDate  string                `json:"startDate"`
	EndDate    string                `json:"endDate"`
	Rules      payroll.RulesOverride `json:"rules"`
}

type calculationResponse struct {
	payroll.Result
	Formatted map[string]string `json:"formatted"`
}

type taxResponse struct {
	payroll.TaxEstimate
	Formatted map[string]string `json:"formatted"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/rules", h.handleRules)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/tax", h.handleTax)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/weekly", h.handleWeekly)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/payslip", h.handlePayslip)
	})
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Rules(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	req, ok := decodeRequest(w, r, requestID)
	if !ok {
		return
	}
	result, err := h.Service.Calculate(r.Context(), req)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.Calculation()
	}

	calc := result.Calculation
	api.Success(w, calculationResponse{
		Result: result,
		Formatted: map[string]string{
			"baseSalary":     payroll.FormatCurrency(result.BaseSalary),
			"hourlyRate":     payroll.FormatCurrency(result.HourlyRate),
			"totalAmount":    payroll.FormatCurrency(calc.TotalAmount),
			"irps":           payroll.FormatCurrency(calc.Deductions.IRPS),
			"socialSecurity": payroll.FormatCurrency(calc.Deductions.SocialSecurity),
			"breakTime":      payroll.FormatCurrency(calc.Deductions.BreakTime),
			"netAmount":      payroll.FormatCurrency(calc.NetAmount),
		},
	}, requestID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	req, ok := decodeRequest(w, r, requestID)
	if !ok {
		return
	}
	var buf bytes.Buffer
	result, err := h.Service.Payslip(r.Context(), req, &buf)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.Payslip()
	}
	filename := fmt.Sprintf("payslip_%s_%s.pdf", result.Period.Start.Format("20060102"), result.Period.End.Format("20060102"))
	api.Attachment(w, "application/pdf", filename, buf.Bytes())
}

func (h *Handler) handleWeekly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	v.Required("employeeId", query.Get("employeeId"), "is required")
	start := v.OptionalDate("startDate", query.Get("startDate"))
	end := v.OptionalDate("endDate", query.Get("endDate"))
	month := v.Month("month", query.Get("month"))
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	v.Enum("format", format, []string{"json", "xlsx"}, "must be json or xlsx")
	if v.Reject(w, requestID) {
		return
	}

	report, err := h.Service.Weekly(r.Context(), strings.TrimSpace(query.Get("employeeId")), payroll.Period{Start: start, End: end}, month)
	if err != nil {
		fail(w, err, requestID)
		return
	}

	if format != "xlsx" {
		api.Success(w, report, requestID)
		return
	}
	var buf bytes.Buffer
	if err := payroll.WriteWeeklyWorkbook(&buf, report); err != nil {
		slog.Error("weekly workbook failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build workbook", requestID)
		return
	}
	filename := fmt.Sprintf("weekly_%s_%s.xlsx", report.Period.Start.Format("20060102"), report.Period.End.Format("20060102"))
	api.Attachment(w, xlsxContentType, filename, buf.Bytes())
}

func (h *Handler) handleTax(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	amount, _ := v.Amount("amount", r.URL.Query().Get("amount"))
	if v.Reject(w, requestID) {
		return
	}
	est, err := payroll.EstimateTax(amount)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, taxResponse{
		TaxEstimate: est,
		Formatted: map[string]string{
			"gross":                  payroll.FormatCurrency(est.Gross),
			"incomeTax":              payroll.FormatCurrency(est.IncomeTax),
			"socialSecurity":         payroll.FormatCurrency(est.SocialSecurity),
			"employerSocialSecurity": payroll.FormatCurrency(est.EmployerSocialSecurity),
			"net":                    payroll.FormatCurrency(est.Net),
		},
	}, requestID)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, requestID string) (payroll.Request, bool) {
	var payload calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return payroll.Request{}, false
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	start := v.OptionalDate("startDate", payload.StartDate)
	end := v.OptionalDate("endDate", payload.EndDate)
	if v.Reject(w, requestID) {
		return payroll.Request{}, false
	}
	return payroll.Request{
		EmployeeID: strings.TrimSpace(payload.EmployeeID),
		Period:     payroll.Period{Start: start, End: end},
		Overrides:  payload.Rules,
	}, true
}

func fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, payroll.ErrMissingRange), errors.Is(err, payroll.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidRules):
		api.Fail(w, http.StatusBadRequest, "invalid_rules", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidSalary), errors.Is(err, payroll.ErrNegativeAmount):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error(), requestID)
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", err.Error(), requestID)
	case errors.Is(err, context.DeadlineExceeded):
		api.Fail(w, http.StatusGatewayTimeout, "timeout", "payroll calculation timed out", requestID)
	default:
		slog.Error("payroll request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll request failed", requestID)
	}
}
