package heads

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler exposes the head registry over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers head registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/heads", h.list)
	r.Post("/heads", h.create)
	r.Patch("/heads/{id}", h.rename)
	r.Delete("/heads/{id}", h.delete)
}

type createHeadRequest struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=income expense bank others"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createHeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
		return
	}
	head, err := h.service.Create(r.Context(), req.Name, Kind(req.Kind))
	if err != nil {
		h.logger.Warn("create head", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, head)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var kind *Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k := Kind(raw)
		kind = &k
	}
	heads, err := h.service.List(r.Context(), kind)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if heads == nil {
		heads = []Head{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"heads": heads})
}

type renameHeadRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed head id")
		return
	}
	var req renameHeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
		return
	}
	if err := h.service.Rename(r.Context(), id, req.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	head, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, head)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed head id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete head", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
