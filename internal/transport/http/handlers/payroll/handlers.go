package payrollhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"timeclock/internal/domain/payroll"
	"timeclock/internal/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
}

func NewHandler(service *payroll.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request, requestID string) (from, to time.Time, employeeID string, ok bool) {
	v := shared.NewValidator()
	v.Required("from", r.URL.Query().Get("from"), "report start date is required")
	v.Required("to", r.URL.Query().Get("to"), "report end date is required")
	if !v.HasIssues() {
		from, _ = v.Date("from", r.URL.Query().Get("from"))
		to, _ = v.Date("to", r.URL.Query().Get("to"))
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, requestID) {
		return time.Time{}, time.Time{}, "", false
	}
	return from, to, r.URL.Query().Get("employeeId"), true
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request, requestID string) (payroll.Report, bool) {
	from, to, employeeID, ok := h.parseRange(w, r, requestID)
	if !ok {
		return payroll.Report{}, false
	}

	report, err := h.Service.Calculate(r.Context(), from, to, employeeID)
	if errors.Is(err, payroll.ErrInvalidRange) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), requestID)
		return payroll.Report{}, false
	}
	if err != nil {
		slog.Error("payroll calculation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
		return payroll.Report{}, false
	}
	return report, true
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	report, ok := h.calculate(w, r, requestID)
	if !ok {
		return
	}
	api.Success(w, report, requestID)
}

func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	report, ok := h.calculate(w, r, requestID)
	if !ok {
		return
	}

	filename := fmt.Sprintf("payroll_%s_%s.csv",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := payroll.WriteCSV(w, report); err != nil {
		slog.Warn("csv export write failed", "err", err)
	}
}

func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	report, ok := h.calculate(w, r, requestID)
	if !ok {
		return
	}

	filename := fmt.Sprintf("payroll_%s_%s.pdf",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := payroll.WritePDF(w, report); err != nil {
		slog.Warn("pdf export write failed", "err", err)
	}
}
