package vouchers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/conferia/conferia/internal/platform/httpx"
)

// Handler manages voucher endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/vouchers", h.register)
	r.Get("/vouchers/{ref}", h.resolve)
}

type registerRequest struct {
	OrganizerID string `json:"organizerId" validate:"required"`
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes" validate:"gte=0"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	voucher, err := h.service.Register(r.Context(), RegisterInput{
		OrganizerID: req.OrganizerID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		h.logger.Warn("register voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, voucher)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	voucher, err := h.service.Resolve(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}
