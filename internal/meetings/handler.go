package meetings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/conferia/conferia/internal/platform/httpx"
)

// Handler manages meeting endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers meeting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/meetings", h.list)
	r.Post("/meetings", h.create)
	r.Get("/meetings/{meetingID}", h.get)
	r.Post("/meetings/{meetingID}/close", h.close)
	r.Post("/meetings/{meetingID}/sign", h.sign)
	r.Get("/meetings/{meetingID}/signatures", h.signatures)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, meetings)
}

type createRequest struct {
	Title string `json:"title" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	meeting, err := h.service.Create(r.Context(), req.Title)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, meeting)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	meeting, remaining, err := h.service.Get(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"meeting":                meeting,
		"signatureWindowSeconds": int(remaining.Seconds()),
	})
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.service.Close(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		h.logger.Warn("close meeting", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, meeting)
}

type signRequest struct {
	OrganizerID string `json:"organizerId" validate:"required"`
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sig, err := h.service.Sign(r.Context(), chi.URLParam(r, "meetingID"), req.OrganizerID)
	if err != nil {
		h.logger.Warn("sign meeting", slog.Any("error", err), slog.String("organizer", req.OrganizerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sig)
}

func (h *Handler) signatures(w http.ResponseWriter, r *http.Request) {
	sigs, err := h.service.Signatures(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sigs)
}
