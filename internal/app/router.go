package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/mailom-erp/mailom-erp/internal/analytics/http"
	audithttp "github.com/mailom-erp/mailom-erp/internal/audit/http"
	"github.com/mailom-erp/mailom-erp/internal/auth"
	"github.com/mailom-erp/mailom-erp/internal/importer"
	"github.com/mailom-erp/mailom-erp/internal/inventory"
	"github.com/mailom-erp/mailom-erp/internal/masterdata/costcategories"
	"github.com/mailom-erp/mailom-erp/internal/masterdata/gardens"
	"github.com/mailom-erp/mailom-erp/internal/masterdata/treenames"
	"github.com/mailom-erp/mailom-erp/internal/observability"
	"github.com/mailom-erp/mailom-erp/internal/purchases"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/sales"
	"github.com/mailom-erp/mailom-erp/internal/sales/customers"
	"github.com/mailom-erp/mailom-erp/internal/shared"
	"github.com/mailom-erp/mailom-erp/internal/users"
	"github.com/mailom-erp/mailom-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics

	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	GardensHandler      *gardens.Handler
	CostCategoryHandler *costcategories.Handler
	TreeNamesHandler    *treenames.Handler
	PurchasesHandler    *purchases.Handler
	InventoryHandler    *inventory.Handler
	SalesHandler        *sales.Handler
	CustomersHandler    *customers.Handler
	AnalyticsHandler    *analytichttp.Handler
	AuditHandler        *audithttp.Handler
	ImporterHandler     *importer.Handler
	JobsHandler         *jobs.Handler
}

// NewRouter constructs the chi router with the full API surface under /api.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(api)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(api)
		}
		if params.GardensHandler != nil {
			params.GardensHandler.MountRoutes(api)
		}
		if params.CostCategoryHandler != nil {
			params.CostCategoryHandler.MountRoutes(api)
		}
		if params.TreeNamesHandler != nil {
			params.TreeNamesHandler.MountRoutes(api)
		}
		if params.PurchasesHandler != nil {
			params.PurchasesHandler.MountRoutes(api)
		}
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(api)
		}
		if params.SalesHandler != nil {
			params.SalesHandler.MountRoutes(api)
		}
		if params.CustomersHandler != nil {
			params.CustomersHandler.MountRoutes(api)
		}
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(api, params.RBACMiddleware)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(api, params.RBACMiddleware)
		}
		if params.ImporterHandler != nil {
			params.ImporterHandler.MountRoutes(api)
		}
		if params.JobsHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				jr.Use(params.RBACMiddleware.RequireAll(rbac.PermSystemManage))
				params.JobsHandler.MountRoutes(jr)
			})
		}
	})

	return r
}
