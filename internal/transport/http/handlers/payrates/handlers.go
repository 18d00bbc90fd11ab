package payrateshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/domain/audit"
	"timeclock/internal/domain/payrate"
	"timeclock/internal/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/middleware"
	"timeclock/internal/transport/http/shared"
)

type Handler struct {
	Service *payrate.Service
	Audit   *audit.Service
}

func NewHandler(service *payrate.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) record(r *http.Request, action, entityID string, before, after any) {
	actorID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = user.UserID
	}
	if err := h.Audit.Record(r.Context(), actorID, action, "pay_rate", entityID,
		requestctx.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) HandleGetDefault(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	rate, err := h.Service.Default(r.Context())
	if errors.Is(err, payrate.ErrDefaultMissing) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
		return
	}
	if err != nil {
		slog.Error("default rate fetch failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}
	api.Success(w, rate, requestID)
}

// HandlePutDefault seeds or replaces the singleton default record. Every
// field is required here; only overrides are partial.
func (h *Handler) HandlePutDefault(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	var payload payrate.Rate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Positive("weekdayRate", payload.WeekdayRate, "must be a positive rate")
	v.Positive("saturdayRate", payload.SaturdayRate, "must be a positive rate")
	v.Positive("sundayRate", payload.SundayRate, "must be a positive rate")
	v.Positive("publicHolidayRate", payload.PublicHolidayRate, "must be a positive rate")
	if payload.PaidBreakMinutes < 0 {
		v.Add("paidBreakMinutes", "must not be negative")
	}
	if v.Reject(w, requestID) {
		return
	}

	before, _ := h.Service.Default(r.Context())
	if err := h.Service.UpdateDefault(r.Context(), payload); err != nil {
		slog.Error("default rate update failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}

	h.record(r, "pay_rate.default_update", "default", before, payload)
	api.Success(w, payload, requestID)
}

// HandleGetEmployee returns the override plus the resolved effective rate.
func (h *Handler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeId")

	override, err := h.Service.OverrideFor(r.Context(), employeeID)
	if err != nil {
		slog.Error("override fetch failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}
	resolved, err := h.Service.Resolve(r.Context(), employeeID)
	if err != nil {
		slog.Error("rate resolve failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}
	api.Success(w, map[string]any{"override": override, "effective": resolved}, requestID)
}

func (h *Handler) HandlePutEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeId")

	var payload payrate.Override
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.EmployeeID = employeeID

	v := shared.NewValidator()
	for field, value := range map[string]*float64{
		"weekdayRate":       payload.WeekdayRate,
		"saturdayRate":      payload.SaturdayRate,
		"sundayRate":        payload.SundayRate,
		"publicHolidayRate": payload.PublicHolidayRate,
	} {
		if value != nil && *value <= 0 {
			v.Add(field, "must be a positive rate when set")
		}
	}
	if payload.PaidBreakMinutes != nil && *payload.PaidBreakMinutes < 0 {
		v.Add("paidBreakMinutes", "must not be negative")
	}
	if v.Reject(w, requestID) {
		return
	}

	before, _ := h.Service.OverrideFor(r.Context(), employeeID)
	if err := h.Service.UpsertOverride(r.Context(), payload); err != nil {
		slog.Error("override upsert failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}

	h.record(r, "pay_rate.override_upsert", employeeID, before, payload)
	api.Success(w, payload, requestID)
}

func (h *Handler) HandleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeId")

	before, _ := h.Service.OverrideFor(r.Context(), employeeID)
	err := h.Service.DeleteOverride(r.Context(), employeeID)
	if errors.Is(err, payrate.ErrOverrideMissing) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
		return
	}
	if err != nil {
		slog.Error("override delete failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}

	h.record(r, "pay_rate.override_delete", employeeID, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}
