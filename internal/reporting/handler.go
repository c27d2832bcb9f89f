package reporting

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/conferia/conferia/internal/platform/httpx"
)

// Handler manages report endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/summary", h.summary)
	r.Get("/reports/budget", h.budget)
	r.Put("/reports/budget", h.setBudget)
	r.Get("/reports/punctuality", h.punctuality)
	r.Get("/reports/export.csv", h.exportCSV)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summaries, totals, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("build summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"summaries": summaries, "totals": totals})
}

func (h *Handler) budget(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.BudgetExecution(r.Context())
	if err != nil {
		h.logger.Error("build budget report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

type setBudgetRequest struct {
	Category string  `json:"category" validate:"required"`
	Budgeted float64 `json:"budgeted" validate:"gte=0"`
	Executed float64 `json:"executed" validate:"gte=0"`
}

func (h *Handler) setBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SetBudget(r.Context(), req.Category, req.Budgeted, req.Executed); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) punctuality(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.PunctualityReport(r.Context())
	if err != nil {
		h.logger.Error("build punctuality report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	summaries, totals, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.BudgetExecution(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="treasury-report.csv"`)
	if err := WriteSummaryCSV(w, summaries, totals); err != nil {
		h.logger.Error("write summary csv", slog.Any("error", err))
		return
	}
	if err := WriteBudgetCSV(w, rows); err != nil {
		h.logger.Error("write budget csv", slog.Any("error", err))
	}
}
