package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mailom-erp/mailom-erp/internal/inventory"
	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// Handler exposes the sale endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW, validator: validator.New()}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermSaleView))
		r.Get("/sales", h.list)
		r.Get("/sales/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermSaleCreate))
		r.Post("/sales", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermSaleEdit))
		r.Post("/sales/{id}/complete", h.complete)
		r.Post("/sales/{id}/cancel", h.cancel)
	})
}

type saleRequest struct {
	ProductID    int64   `json:"productId" validate:"required,gt=0"`
	CustomerID   int64   `json:"customerId" validate:"required,gt=0"`
	SaleDate     string  `json:"saleDate"`
	Price        float64 `json:"price" validate:"gte=0"`
	Shipping     float64 `json:"shipping" validate:"gte=0"`
	Installation float64 `json:"installation" validate:"gte=0"`
	OtherCosts   float64 `json:"otherCosts" validate:"gte=0"`
	Status       string  `json:"status"`
	Note         string  `json:"note"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	customerID, _ := strconv.ParseInt(q.Get("customerId"), 10, 64)
	productID, _ := strconv.ParseInt(q.Get("productId"), 10, 64)

	sales, total, err := h.service.List(r.Context(), ListFilters{
		Status:     Status(q.Get("status")),
		CustomerID: customerID,
		ProductID:  productID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.logger.Error("list sales failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       sales,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale ID")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var saleDate time.Time
	if req.SaleDate != "" {
		var err error
		saleDate, err = time.Parse("2006-01-02", req.SaleDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "saleDate must be YYYY-MM-DD")
			return
		}
	}

	sale, err := h.service.Create(r.Context(), CreateInput{
		ProductID:    req.ProductID,
		CustomerID:   req.CustomerID,
		SaleDate:     saleDate,
		Price:        req.Price,
		Shipping:     req.Shipping,
		Installation: req.Installation,
		OtherCosts:   req.OtherCosts,
		Status:       Status(req.Status),
		Note:         req.Note,
		ActorID:      actorID(r),
	})
	if err != nil {
		h.respondError(w, "create sale", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale ID")
		return
	}
	sale, err := h.service.Complete(r.Context(), id, actorID(r))
	if err != nil {
		h.respondError(w, "complete sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale ID")
		return
	}
	sale, err := h.service.Cancel(r.Context(), id, actorID(r))
	if err != nil {
		h.respondError(w, "cancel sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sale not found")
	case errors.Is(err, inventory.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrProductUnavailable):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func actorID(r *http.Request) int64 {
	return shared.ActorID(r.Context())
}
