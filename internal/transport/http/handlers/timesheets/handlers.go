package timesheethandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paysheet/internal/domain/auth"
	"paysheet/internal/domain/timesheet"
	"paysheet/internal/transport/http/api"
	"paysheet/internal/transport/http/middleware"
	"paysheet/internal/transport/http/shared"
)

const (
	uploadEndpoint  = "timesheets.upload"
	maxListPageSize = 500
)

type Service interface {
	Upload(ctx context.Context, filename string, r io.Reader) (timesheet.UploadResult, error)
	List(ctx context.Context, filter timesheet.Filter) ([]timesheet.Entry, error)
	Get(ctx context.Context, id string) (timesheet.Entry, error)
	Create(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error)
	Update(ctx context.Context, id string, patch timesheet.Patch) (timesheet.Entry, error)
	Delete(ctx context.Context, id string) error
	ClockIn(ctx context.Context, employeeID string) (timesheet.Entry, error)
	ClockOut(ctx context.Context, entryID string) (timesheet.Entry, error)
}

// IdempotencyStore claims a key before the upload runs and replays the
// stored response of a retried upload.
type IdempotencyStore interface {
	Reserve(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
	Release(ctx context.Context, userID, endpoint, key string) error
}

type UploadRecorder interface {
	Upload(accepted bool, entries int)
}

type Handler struct {
	Service        Service
	Perms          middleware.PermissionChecker
	Idempotency    IdempotencyStore
	Metrics        UploadRecorder
	MaxUploadBytes int64
}

func NewHandler(service Service, perms middleware.PermissionChecker, idem IdempotencyStore, metrics UploadRecorder, maxUploadBytes int64) *Handler {
	return &Handler{Service: service, Perms: perms, Idempotency: idem, Metrics: metrics, MaxUploadBytes: maxUploadBytes}
}

type entryPayload struct {
	EmployeeID    string  `json:"employeeId"`
	EntryDate     string  `json:"entryDate"`
	ClockIn       *string `json:"clockIn"`
	ClockOut      *string `json:"clockOut"`
	TotalHours    float64 `json:"totalHours"`
	BreakTime     float64 `json:"breakTime"`
	OvertimeHours float64 `json:"overtimeHours"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes"`
}

type clockInPayload struct {
	EmployeeID string `json:"employeeId"`
}

var statuses = []string{string(timesheet.StatusRegular), string(timesheet.StatusDayOff)}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheets", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTimesheetsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTimesheetsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(
			middleware.RequirePermission(auth.PermTimesheetsWrite, h.Perms),
			middleware.UploadLimit(h.MaxUploadBytes),
		).Post("/upload", h.handleUpload)
		r.With(middleware.RequirePermission(auth.PermTimesheetsClock, h.Perms)).Post("/clock-in", h.handleClockIn)
		r.With(middleware.RequirePermission(auth.PermTimesheetsRead, h.Perms)).Get("/{entryID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermTimesheetsWrite, h.Perms)).Patch("/{entryID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermTimesheetsWrite, h.Perms)).Delete("/{entryID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermTimesheetsClock, h.Perms)).Post("/{entryID}/clock-out", h.handleClockOut)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "file_too_large", "timesheet file is too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "missing_file", "multipart field \"file\" is required", requestID)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_file", "failed to read uploaded file", requestID)
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get(middleware.IdempotencyHeader))
	requestHash := middleware.RequestHash(append([]byte(header.Filename+"\n"), content...))
	reserved := false
	if idemKey != "" && h.Idempotency != nil {
		stored, ok, err := h.Idempotency.Reserve(r.Context(), user.UserID, uploadEndpoint, idemKey, requestHash)
		switch {
		case errors.Is(err, middleware.ErrIdempotencyConflict):
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
			return
		case errors.Is(err, middleware.ErrIdempotencyInFlight):
			api.Fail(w, http.StatusConflict, "idempotency_in_flight", err.Error(), requestID)
			return
		case err != nil:
			slog.Warn("idempotency reserve failed", "err", err)
		case !ok:
			api.Success(w, stored, requestID)
			return
		default:
			reserved = true
		}
	}

	result, err := h.Service.Upload(r.Context(), header.Filename, bytes.NewReader(content))
	if err != nil {
		if reserved {
			if err := h.Idempotency.Release(context.WithoutCancel(r.Context()), user.UserID, uploadEndpoint, idemKey); err != nil {
				slog.Warn("idempotency release failed", "err", err)
			}
		}
		h.recordUpload(false, 0)
		failUpload(w, err, requestID)
		return
	}
	h.recordUpload(true, result.Accepted)

	if reserved {
		ctx := context.WithoutCancel(r.Context())
		raw, err := json.Marshal(result)
		if err == nil {
			err = h.Idempotency.Save(ctx, user.UserID, uploadEndpoint, idemKey, requestHash, raw)
		} else {
			err = errors.Join(err, h.Idempotency.Release(ctx, user.UserID, uploadEndpoint, idemKey))
		}
		if err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Created(w, result, requestID)
}

func failUpload(w http.ResponseWriter, err error, requestID string) {
	var uploadErr *timesheet.UploadError
	switch {
	case errors.As(err, &uploadErr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "upload_rejected", "upload rejected",
			map[string]any{"rows": uploadErr.Messages}, requestID)
	case errors.Is(err, timesheet.ErrNoValidEntries):
		api.Fail(w, http.StatusUnprocessableEntity, "no_valid_entries", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrUnsupportedFormat):
		api.Fail(w, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrUnreadableFile):
		api.Fail(w, http.StatusBadRequest, "invalid_file", err.Error(), requestID)
	default:
		slog.Error("timesheet upload failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to store timesheet", requestID)
	}
}

func (h *Handler) recordUpload(accepted bool, entries int) {
	if h.Metrics != nil {
		h.Metrics.Upload(accepted, entries)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	from := v.OptionalDate("startDate", query.Get("startDate"))
	to := v.OptionalDate("endDate", query.Get("endDate"))
	v.DateOrder("startDate", from, "endDate", to)
	page := v.Pagination(query, maxListPageSize)
	if v.Reject(w, requestID) {
		return
	}

	entries, err := h.Service.List(r.Context(), timesheet.Filter{
		EmployeeID: strings.TrimSpace(query.Get("employeeId")),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	if entries == nil {
		entries = []timesheet.Entry{}
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	entry, err := h.Service.Get(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, entry, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if strings.TrimSpace(payload.Status) == "" {
		payload.Status = string(timesheet.StatusRegular)
	}
	payload.Status = string(timesheet.ParseStatus(payload.Status))

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	date, _ := v.Date("entryDate", payload.EntryDate)
	v.Enum("status", payload.Status, statuses, "must be regular or dayoff")
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Create(r.Context(), timesheet.Entry{
		EmployeeID:    strings.TrimSpace(payload.EmployeeID),
		EntryDate:     date,
		ClockIn:       payload.ClockIn,
		ClockOut:      payload.ClockOut,
		TotalHours:    payload.TotalHours,
		BreakTime:     payload.BreakTime,
		OvertimeHours: payload.OvertimeHours,
		Status:        timesheet.Status(payload.Status),
		Notes:         strings.TrimSpace(payload.Notes),
	})
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var patch timesheet.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if patch.Status != nil {
		v := shared.NewValidator()
		v.Enum("status", string(timesheet.ParseStatus(*patch.Status)), statuses, "must be regular or dayoff")
		if v.Reject(w, requestID) {
			return
		}
	}
	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "entryID"), patch)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "entryID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, requestID)
}

// handleClockIn defaults to the caller's linked employee. Callers without
// timesheet write access can only clock themselves in.
func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	var payload clockInPayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
			return
		}
	}
	employeeID := strings.TrimSpace(payload.EmployeeID)
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID == "" {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "employeeId", Reason: "is required"}})
		return
	}
	if employeeID != user.EmployeeID && !h.Perms.HasPermission(user.Role, auth.PermTimesheetsWrite) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot clock in for another employee", requestID)
		return
	}

	entry, err := h.Service.ClockIn(r.Context(), employeeID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Created(w, entry, requestID)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	entryID := chi.URLParam(r, "entryID")
	if !h.Perms.HasPermission(user.Role, auth.PermTimesheetsWrite) {
		entry, err := h.Service.Get(r.Context(), entryID)
		if err != nil {
			h.fail(w, err, requestID)
			return
		}
		if entry.EmployeeID != user.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot clock out for another employee", requestID)
			return
		}
	}

	entry, err := h.Service.ClockOut(r.Context(), entryID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, entry, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, timesheet.ErrEntryNotFound):
		api.Fail(w, http.StatusNotFound, "entry_not_found", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrInvalidEntry):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_entry", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrAlreadyClockedIn), errors.Is(err, timesheet.ErrNotClockedIn):
		api.Fail(w, http.StatusConflict, "clock_conflict", err.Error(), requestID)
	default:
		slog.Error("timesheet request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "timesheet request failed", requestID)
	}
}
