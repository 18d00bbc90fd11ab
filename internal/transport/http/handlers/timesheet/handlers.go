package timesheethandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/domain/audit"
	"timeclock/internal/domain/timesheet"
	"timeclock/internal/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/middleware"
	"timeclock/internal/transport/http/shared"
)

type Handler struct {
	Service *timesheet.Service
	Audit   *audit.Service
}

func NewHandler(service *timesheet.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func actorFrom(r *http.Request) (timesheet.Actor, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return timesheet.Actor{}, false
	}
	return timesheet.Actor{UserID: user.UserID, EmployeeID: user.EmployeeID, Role: user.RoleName}, true
}

// failDomain translates ledger errors into stable API codes. State conflicts
// are 409s so clients can distinguish them from validation failures.
func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, timesheet.ErrShiftNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrShiftAlreadyActive):
		api.Fail(w, http.StatusConflict, "shift_already_active", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrStillOnBreak):
		api.Fail(w, http.StatusConflict, "still_on_break", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrAlreadyCompleted):
		api.Fail(w, http.StatusConflict, "already_completed", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrBreakAlreadyOpen):
		api.Fail(w, http.StatusConflict, "break_already_open", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrBreakNotStarted):
		api.Fail(w, http.StatusConflict, "break_not_started", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrVenueNotFound):
		api.Fail(w, http.StatusBadRequest, "invalid_venue", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrVenueClosed):
		api.Fail(w, http.StatusBadRequest, "venue_closed", err.Error(), requestID)
	case errors.Is(err, timesheet.ErrNotPermitted):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	default:
		slog.Error("timesheet operation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
	}
}

func (h *Handler) record(r *http.Request, actor timesheet.Actor, action, shiftID string, before, after any) {
	if err := h.Audit.Record(r.Context(), actor.UserID, action, "shift", shiftID,
		requestctx.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

type clockInRequest struct {
	VenueID    string `json:"venueId"`
	EmployeeID string `json:"employeeId"`
}

// HandleClockIn opens a shift. employeeId defaults to the caller; supplying
// another employee's id is the kiosk path and requires admin.
func (h *Handler) HandleClockIn(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload clockInRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	subject := payload.EmployeeID
	if subject == "" {
		subject = actor.EmployeeID
	}

	v := shared.NewValidator()
	v.Required("venueId", payload.VenueID, "venue is required")
	v.Required("employeeId", subject, "no employee record for this user")
	if v.Reject(w, requestID) {
		return
	}

	shift, err := h.Service.ClockIn(r.Context(), actor, subject, payload.VenueID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.clock_in", shift.ID, nil, shift)
	api.Created(w, shift, requestID)
}

func (h *Handler) HandleStartBreak(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	shift, err := h.Service.StartBreak(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.break_start", shift.ID, nil, shift)
	api.Success(w, shift, requestID)
}

func (h *Handler) HandleEndBreak(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	shift, err := h.Service.EndBreak(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.break_end", shift.ID, nil, shift)
	api.Success(w, shift, requestID)
}

func (h *Handler) HandleClockOut(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	shift, err := h.Service.ClockOut(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.clock_out", shift.ID, nil, shift)
	api.Success(w, shift, requestID)
}

type adminClockOutRequest struct {
	ClockOutTime string `json:"clockOutTime"`
	Notes        string `json:"notes"`
}

func (h *Handler) HandleAdminClockOut(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload adminClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	clockOut := time.Now().UTC()
	if payload.ClockOutTime != "" {
		parsed, err := time.Parse(time.RFC3339, payload.ClockOutTime)
		if err != nil {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{
				{Field: "clockOutTime", Reason: "must be an RFC3339 timestamp"},
			})
			return
		}
		clockOut = parsed
	}

	before, _ := h.Service.GetShift(r.Context(), actor, chi.URLParam(r, "id"))
	shift, err := h.Service.AdminClockOut(r.Context(), actor, chi.URLParam(r, "id"), clockOut, payload.Notes)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.admin_clock_out", shift.ID, before, shift)
	api.Success(w, shift, requestID)
}

type manualShiftRequest struct {
	EmployeeID   string `json:"employeeId"`
	VenueID      string `json:"venueId"`
	ClockInTime  string `json:"clockInTime"`
	ClockOutTime string `json:"clockOutTime"`
	Notes        string `json:"notes"`
}

func (h *Handler) HandleCreateManual(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload manualShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	v.Required("venueId", payload.VenueID, "venue is required")
	clockIn, inOK := parseTimestamp(v, "clockInTime", payload.ClockInTime)
	clockOut, outOK := parseTimestamp(v, "clockOutTime", payload.ClockOutTime)
	if v.Reject(w, requestID) || !inOK || !outOK {
		return
	}

	shift, err := h.Service.CreateManualShift(r.Context(), actor, payload.EmployeeID, payload.VenueID, clockIn, clockOut, payload.Notes)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.manual_create", shift.ID, nil, shift)
	api.Created(w, shift, requestID)
}

type updateShiftRequest struct {
	ClockInTime  *string `json:"clockInTime"`
	ClockOutTime *string `json:"clockOutTime"`
	Notes        *string `json:"notes"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload updateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	var clockIn, clockOut *time.Time
	if payload.ClockInTime != nil {
		if parsed, ok := parseTimestamp(v, "clockInTime", *payload.ClockInTime); ok {
			clockIn = &parsed
		}
	}
	if payload.ClockOutTime != nil {
		if parsed, ok := parseTimestamp(v, "clockOutTime", *payload.ClockOutTime); ok {
			clockOut = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	before, _ := h.Service.GetShift(r.Context(), actor, chi.URLParam(r, "id"))
	shift, err := h.Service.UpdateShift(r.Context(), actor, chi.URLParam(r, "id"), clockIn, clockOut, payload.Notes)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.update", shift.ID, before, shift)
	api.Success(w, shift, requestID)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	shiftID := chi.URLParam(r, "id")
	before, _ := h.Service.GetShift(r.Context(), actor, shiftID)
	if err := h.Service.DeleteShift(r.Context(), actor, shiftID); err != nil {
		failDomain(w, err, requestID)
		return
	}

	h.record(r, actor, "shift.delete", shiftID, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

// HandleActive returns the caller's open shift, or null when none exists. An
// admin may pass employeeId to inspect someone else's.
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	subject := r.URL.Query().Get("employeeId")
	if subject == "" {
		subject = actor.EmployeeID
	}

	shift, err := h.Service.ActiveShift(r.Context(), actor, subject)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, shift, requestID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	shift, err := h.Service.GetShift(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		failDomain(w, err, requestID)
		return
	}

	breaks, err := h.Service.BreaksFor(r.Context(), actor, shift.ID)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"shift": shift, "breaks": breaks}, requestID)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	v := shared.NewValidator()
	filter := timesheet.ShiftFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		VenueID:    r.URL.Query().Get("venueId"),
		Status:     r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			filter.From = &parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			filter.To = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter.Page = page.Page
	filter.PageSize = page.PageSize

	shifts, total, err := h.Service.ListShifts(r.Context(), actor, filter)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{
		"shifts":   shifts,
		"total":    total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	}, requestID)
}

// HandleLongRunning lists active shifts older than the threshold, default 16h.
func (h *Handler) HandleLongRunning(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	threshold := 16 * time.Hour
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{
				{Field: "threshold", Reason: "must be a positive duration such as 12h"},
			})
			return
		}
		threshold = parsed
	}

	shifts, err := h.Service.LongRunning(r.Context(), actor, threshold)
	if err != nil {
		failDomain(w, err, requestID)
		return
	}
	api.Success(w, shifts, requestID)
}

func parseTimestamp(v *shared.Validator, field, raw string) (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		v.Add(field, "must be an RFC3339 timestamp")
		return time.Time{}, false
	}
	return parsed, true
}
