package holidayshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/domain/audit"
	"timeclock/internal/domain/holiday"
	"timeclock/internal/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/middleware"
	"timeclock/internal/transport/http/shared"
)

type Handler struct {
	Service *holiday.Service
	Audit   *audit.Service
}

func NewHandler(service *holiday.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) record(r *http.Request, action, entityID string, before, after any) {
	actorID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = user.UserID
	}
	if err := h.Audit.Record(r.Context(), actorID, action, "public_holiday", entityID,
		requestctx.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

// HandleList defaults to the current calendar year.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	now := time.Now().UTC()
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)

	v := shared.NewValidator()
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			to = parsed
		}
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, requestID) {
		return
	}

	holidays, err := h.Service.List(r.Context(), from, to)
	if err != nil {
		slog.Error("holiday list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}
	api.Success(w, holidays, requestID)
}

type createHolidayRequest struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	IsRecurring bool   `json:"isRecurring"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	var payload createHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	day, dayOK := v.Date("date", payload.Date)
	if v.Reject(w, requestID) || !dayOK {
		return
	}

	created, err := h.Service.Create(r.Context(), day, payload.Name, payload.IsRecurring)
	if errors.Is(err, holiday.ErrDuplicateDate) {
		api.Fail(w, http.StatusConflict, "duplicate_date", err.Error(), requestID)
		return
	}
	if err != nil {
		slog.Error("holiday create failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}

	h.record(r, "holiday.create", created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	before, _ := h.Service.Get(r.Context(), id)

	err := h.Service.Delete(r.Context(), id)
	if errors.Is(err, holiday.ErrHolidayNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
		return
	}
	if err != nil {
		slog.Error("holiday delete failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}

	h.record(r, "holiday.delete", id, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}
