package employeehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paysheet/internal/domain/auth"
	"paysheet/internal/domain/employee"
	"paysheet/internal/transport/http/api"
	"paysheet/internal/transport/http/middleware"
	"paysheet/internal/transport/http/shared"
)

type Store interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Get(ctx context.Context, id string) (employee.Employee, error)
	Create(ctx context.Context, emp employee.Employee) (employee.Employee, error)
	Update(ctx context.Context, emp employee.Employee) (employee.Employee, error)
}

// CompensationListener is told when an employee's record changes so
// derived payroll results can be dropped.
type CompensationListener interface {
	EntriesChanged(ctx context.Context, employeeIDs ...string)
}

type Handler struct {
	Store    Store
	Perms    middleware.PermissionChecker
	Listener CompensationListener
}

func NewHandler(store Store, perms middleware.PermissionChecker, listener CompensationListener) *Handler {
	return &Handler{Store: store, Perms: perms, Listener: listener}
}

// employeePayload accepts startDate as a plain date.
type employeePayload struct {
	employee.Employee
	StartDate string `json:"startDate"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employees, err := h.Store.List(r.Context())
	if err != nil {
		slog.Error("list employees failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", requestID)
		return
	}
	if employees == nil {
		employees = []employee.Employee{}
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, err := h.Store.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, ok := decodeEmployee(w, r, requestID)
	if !ok {
		return
	}
	emp.ID = ""
	created, err := h.Store.Create(r.Context(), emp)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, ok := decodeEmployee(w, r, requestID)
	if !ok {
		return
	}
	emp.ID = chi.URLParam(r, "employeeID")
	updated, err := h.Store.Update(r.Context(), emp)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	if h.Listener != nil {
		h.Listener.EntriesChanged(r.Context(), updated.ID)
	}
	api.Success(w, updated, requestID)
}

func decodeEmployee(w http.ResponseWriter, r *http.Request, requestID string) (employee.Employee, bool) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return employee.Employee{}, false
	}
	emp := payload.Employee
	emp.ExternalID = strings.TrimSpace(emp.ExternalID)
	emp.Name = strings.TrimSpace(emp.Name)
	emp.Email = strings.TrimSpace(emp.Email)

	v := shared.NewValidator()
	for _, issue := range employee.Validate(emp) {
		v.Add(issue.Field, issue.Reason)
	}
	if start := v.OptionalDate("startDate", payload.StartDate); !start.IsZero() {
		emp.StartDate = &start
	}
	if v.Reject(w, requestID) {
		return employee.Employee{}, false
	}
	return emp, true
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", err.Error(), requestID)
	case errors.Is(err, employee.ErrDuplicateExternal):
		api.Fail(w, http.StatusConflict, "employee_exists", err.Error(), requestID)
	default:
		slog.Error("employee request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "employee request failed", requestID)
	}
}
