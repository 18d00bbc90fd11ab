package audithandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"timeclock/internal/domain/audit"
	"timeclock/internal/requestctx"
	"timeclock/internal/transport/http/api"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorUser:  r.URL.Query().Get("actorId"),
	}

	limit := 50
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		slog.Error("audit count failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}
	events, err := h.Service.List(r.Context(), filter, limit, offset)
	if err != nil {
		slog.Error("audit list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return
	}

	api.Success(w, map[string]any{"events": events, "total": total, "limit": limit, "offset": offset}, requestID)
}
