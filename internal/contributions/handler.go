package contributions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/conferia/conferia/internal/platform/httpx"
	"github.com/conferia/conferia/internal/schedule"
)

// Handler manages contribution ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers contribution routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/config", h.getConfig)
	r.Put("/config", h.updateConfig)
	r.Post("/plan/initialize", h.initializePlan)
	r.Get("/periods", h.listPeriods)
	r.Get("/contributions", h.listCells)
	r.Get("/contributions/voucher-group", h.voucherGroup)
	r.Post("/contributions/select", h.selectForPayment)
	r.Post("/contributions/submit", h.submitPayment)
	r.Post("/contributions/approve", h.approve)
	r.Post("/contributions/reject", h.reject)
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Config(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg schedule.Config
	if err := httpx.DecodeJSON(r, &cfg); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(cfg); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	periods, err := h.service.Configure(r.Context(), cfg)
	if err != nil {
		h.logger.Warn("update treasury config", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"config": cfg, "periods": periods})
}

func (h *Handler) initializePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.service.InitializePlan(r.Context()); err != nil {
		h.logger.Error("initialize contribution plan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "initialized"})
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.Periods(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, periods)
}

func (h *Handler) listCells(w http.ResponseWriter, r *http.Request) {
	organizerID := r.URL.Query().Get("organizer")
	if organizerID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organizer query parameter required")
		return
	}
	cells, err := h.service.ListCells(r.Context(), organizerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cells)
}

func (h *Handler) voucherGroup(w http.ResponseWriter, r *http.Request) {
	organizerID := r.URL.Query().Get("organizer")
	periodID := r.URL.Query().Get("period")
	if organizerID == "" || periodID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organizer and period query parameters required")
		return
	}
	group, err := h.service.GroupByVoucher(r.Context(), organizerID, periodID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

type selectionRequest struct {
	OrganizerID string   `json:"organizerId" validate:"required"`
	PeriodIDs   []string `json:"periodIds" validate:"required,min=1"`
}

func (h *Handler) selectForPayment(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SelectForPayment(r.Context(), req.OrganizerID, req.PeriodIDs); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitRequest struct {
	OrganizerID string   `json:"organizerId" validate:"required"`
	PeriodIDs   []string `json:"periodIds" validate:"required,min=1"`
	VoucherRef  string   `json:"voucherRef" validate:"required"`
	Amount      float64  `json:"amount" validate:"gt=0"`
	ActorID     string   `json:"actorId" validate:"required"`
}

func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.SubmitPayment(r.Context(), SubmitPaymentInput{
		OrganizerID: req.OrganizerID,
		PeriodIDs:   req.PeriodIDs,
		VoucherRef:  req.VoucherRef,
		Amount:      req.Amount,
		ActorID:     req.ActorID,
	})
	if err != nil {
		h.logger.Warn("submit contribution payment", slog.Any("error", err), slog.String("organizer", req.OrganizerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "awaiting_validation"})
}

type approveRequest struct {
	OrganizerID string   `json:"organizerId" validate:"required"`
	PeriodIDs   []string `json:"periodIds" validate:"required,min=1"`
	AccountID   string   `json:"accountId" validate:"required"`
	ActorID     string   `json:"actorId" validate:"required"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.Approve(r.Context(), ApproveInput{
		OrganizerID: req.OrganizerID,
		PeriodIDs:   req.PeriodIDs,
		AccountID:   req.AccountID,
		ActorID:     req.ActorID,
	})
	if err != nil {
		h.logger.Warn("approve contribution", slog.Any("error", err), slog.String("organizer", req.OrganizerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

type rejectRequest struct {
	OrganizerID string   `json:"organizerId" validate:"required"`
	PeriodIDs   []string `json:"periodIds" validate:"required,min=1"`
	Reason      string   `json:"reason" validate:"required"`
	ActorID     string   `json:"actorId" validate:"required"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.Reject(r.Context(), RejectInput{
		OrganizerID: req.OrganizerID,
		PeriodIDs:   req.PeriodIDs,
		Reason:      req.Reason,
		ActorID:     req.ActorID,
	})
	if err != nil {
		h.logger.Warn("reject contribution", slog.Any("error", err), slog.String("organizer", req.OrganizerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "pending"})
}
