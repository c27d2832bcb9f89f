package fines

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/conferia/conferia/internal/platform/httpx"
)

// Handler manages fine ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers fine routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fines", h.list)
	r.Post("/fines", h.issue)
	r.Get("/fines/{fineID}", h.get)
	r.Post("/fines/{fineID}/submit", h.submitPayment)
	r.Post("/fines/{fineID}/approve", h.approve)
	r.Post("/fines/{fineID}/reject", h.reject)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	organizerID := r.URL.Query().Get("organizer")
	var (
		fines []Fine
		err   error
	)
	if organizerID == "" {
		fines, err = h.service.ListAll(r.Context())
	} else {
		fines, err = h.service.ListByOrganizer(r.Context(), organizerID)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fines)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	fine, err := h.service.Get(r.Context(), chi.URLParam(r, "fineID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fine)
}

type issueRequest struct {
	OrganizerID string     `json:"organizerId" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ActorID     string     `json:"actorId" validate:"required"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	fine, err := h.service.Issue(r.Context(), IssueInput{
		OrganizerID: req.OrganizerID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		ActorID:     req.ActorID,
	})
	if err != nil {
		h.logger.Warn("issue fine", slog.Any("error", err), slog.String("organizer", req.OrganizerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, fine)
}

type submitRequest struct {
	VoucherRef string `json:"voucherRef" validate:"required"`
	ActorID    string `json:"actorId" validate:"required"`
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
		FineID:     chi.URLParam(r, "fineID"),
		VoucherRef: req.VoucherRef,
		ActorID:    req.ActorID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "awaiting_validation"})
}

type approveRequest struct {
	AccountID string `json:"accountId" validate:"required"`
	ActorID   string `json:"actorId" validate:"required"`
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
		FineID:    chi.URLParam(r, "fineID"),
		AccountID: req.AccountID,
		ActorID:   req.ActorID,
	})
	if err != nil {
		h.logger.Warn("approve fine", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

type rejectRequest struct {
	Reason  string `json:"reason" validate:"required"`
	ActorID string `json:"actorId" validate:"required"`
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
		FineID:  chi.URLParam(r, "fineID"),
		Reason:  req.Reason,
		ActorID: req.ActorID,
	})
	if err != nil {
		h.logger.Warn("reject fine", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "pending"})
}
