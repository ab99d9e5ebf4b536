package purchases

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// Handler exposes the purchase endpoints.
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

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermPurchaseView))
		r.Get("/purchases", h.list)
		r.Get("/purchases/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPurchaseCreate))
		r.Post("/purchases", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPurchaseEdit))
		r.Put("/purchases/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPurchaseDelete))
		r.Delete("/purchases/{id}", h.delete)
	})
}

type costLineRequest struct {
	CostCategoryID int64   `json:"costCategoryId" validate:"required,gt=0"`
	Amount         float64 `json:"amount" validate:"gte=0"`
	Description    string  `json:"description"`
}

type purchaseRequest struct {
	PurchaseCode  string            `json:"purchaseCode" validate:"required"`
	PurchaseDate  string            `json:"purchaseDate" validate:"required"`
	GardenID      int64             `json:"gardenId" validate:"required,gt=0"`
	DestinationID int64             `json:"destinationGardenId" validate:"gte=0"`
	SupplierRef   string            `json:"supplierRef"`
	TotalCost     float64           `json:"totalCost" validate:"gte=0"`
	Status        string            `json:"status"`
	Note          string            `json:"note"`
	ProductCosts  []costLineRequest `json:"productCosts" validate:"dive"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	gardenID, _ := strconv.ParseInt(q.Get("gardenId"), 10, 64)

	details, total, err := h.service.List(r.Context(), ListFilters{
		Search:   q.Get("search"),
		GardenID: gardenID,
		Status:   Status(q.Get("status")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("list purchases failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       details,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase ID")
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get purchase", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create purchase", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase ID")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update purchase", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase ID")
		return
	}
	if err := h.service.Delete(r.Context(), id, actorID(r)); err != nil {
		h.respondError(w, "delete purchase", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "purchase deleted"})
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var req purchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return CreateInput{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return CreateInput{}, false
	}
	date, err := time.Parse("2006-01-02", req.PurchaseDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "purchaseDate must be YYYY-MM-DD")
		return CreateInput{}, false
	}

	lines := make([]CostLineInput, 0, len(req.ProductCosts))
	for _, line := range req.ProductCosts {
		lines = append(lines, CostLineInput{
			CategoryID:  line.CostCategoryID,
			Amount:      line.Amount,
			Description: line.Description,
		})
	}
	return CreateInput{
		Code:          req.PurchaseCode,
		GardenID:      req.GardenID,
		DestinationID: req.DestinationID,
		SupplierRef:   req.SupplierRef,
		PurchaseDate:  date,
		TotalCost:     req.TotalCost,
		Status:        Status(req.Status),
		Note:          req.Note,
		CostLines:     lines,
		ActorID:       actorID(r),
	}, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "purchase not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "purchase code already exists")
	case errors.Is(err, ErrHasProducts):
		httpx.Problem(w, http.StatusConflict, "Conflict", "purchase has products attached")
	default:
		h.logger.Error(op, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func actorID(r *http.Request) int64 {
	return shared.ActorID(r.Context())
}
