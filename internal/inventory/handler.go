package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// Handler exposes the product endpoints.
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

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermProductView))
		r.Get("/products", h.list)
		r.Get("/products/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermProductCreate))
		r.Post("/products", h.create)
		r.Post("/products/batch", h.createBatch)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermProductEdit))
		r.Put("/products/{id}", h.update)
		r.Post("/products/{id}/status", h.changeStatus)
	})
}

type productRequest struct {
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	HeightM     float64 `json:"height" validate:"gte=0"`
	TrunkSizeCm float64 `json:"faceWood" validate:"gte=0"`
	PotWidthM   float64 `json:"potWidth" validate:"gte=0"`
	PotHeightM  float64 `json:"potHeight" validate:"gte=0"`
	Location    string  `json:"location"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	PurchaseID  int64   `json:"purchaseId"`
	GardenID    int64   `json:"gardenId"`
}

type batchRequest struct {
	PurchaseID int64   `json:"purchaseId" validate:"required,gt=0"`
	GardenID   int64   `json:"gardenId"`
	TotalCost  float64 `json:"totalCost" validate:"gte=0"`
	Name       string  `json:"name" validate:"required"`
	CodePrefix string  `json:"codePrefix" validate:"required"`
	Count      int     `json:"count" validate:"required,gt=0"`
	Price      float64 `json:"price" validate:"gte=0"`
	Location   string  `json:"location"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
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
	gardenID, _ := strconv.ParseInt(q.Get("gardenId"), 10, 64)

	products, total, err := h.service.List(r.Context(), ListFilters{
		Search:   q.Get("search"),
		Status:   Status(q.Get("status")),
		GardenID: gardenID,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       products,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), CreateInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		HeightM:     req.HeightM,
		TrunkSizeCm: req.TrunkSizeCm,
		PotWidthM:   req.PotWidthM,
		PotHeightM:  req.PotHeightM,
		Location:    req.Location,
		Cost:        req.Cost,
		Price:       req.Price,
		PurchaseID:  req.PurchaseID,
		GardenID:    req.GardenID,
		ActorID:     actorID(r),
	})
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	products, err := h.service.CreateBatch(r.Context(), BatchInput{
		PurchaseID: req.PurchaseID,
		GardenID:   req.GardenID,
		TotalCost:  req.TotalCost,
		Name:       req.Name,
		CodePrefix: req.CodePrefix,
		Count:      req.Count,
		Price:      req.Price,
		Location:   req.Location,
		ActorID:    actorID(r),
	})
	if err != nil {
		h.respondError(w, "create product batch", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": products})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Update(r.Context(), id, CreateInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		HeightM:     req.HeightM,
		TrunkSizeCm: req.TrunkSizeCm,
		PotWidthM:   req.PotWidthM,
		PotHeightM:  req.PotHeightM,
		Location:    req.Location,
		Price:       req.Price,
		GardenID:    req.GardenID,
		ActorID:     actorID(r),
	})
	if err != nil {
		h.respondError(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product ID")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.ChangeStatus(r.Context(), id, Status(req.Status), actorID(r)); err != nil {
		h.respondError(w, "change product status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "product code already exists")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func actorID(r *http.Request) int64 {
	return shared.ActorID(r.Context())
}
