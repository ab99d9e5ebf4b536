package gardens

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mailom-erp/mailom-erp/internal/masterdata/shared"
	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	internalShared "github.com/mailom-erp/mailom-erp/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermGardenView, rbac.PermGardenManage))
		r.Get("/gardens", h.list)
		r.Get("/gardens/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermGardenManage))
		r.Post("/gardens", h.create)
		r.Put("/gardens/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermGardenDelete))
		r.Delete("/gardens/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r)
	gardens, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list gardens failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       gardens,
		"pagination": internalShared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid garden ID")
		return
	}
	garden, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get garden", err)
		return
	}
	httpx.JSON(w, http.StatusOK, garden)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var garden Garden
	if err := httpx.DecodeJSON(r, &garden); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), garden)
	if err != nil {
		h.respondError(w, "create garden", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid garden ID")
		return
	}
	var garden Garden
	if err := httpx.DecodeJSON(r, &garden); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, garden); err != nil {
		h.respondError(w, "update garden", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "garden updated"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid garden ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete garden", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "garden deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "garden not found")
	case errors.Is(err, shared.ErrInvalidID):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid garden ID")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", "garden has purchases or products attached")
	default:
		h.logger.Error(op, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
