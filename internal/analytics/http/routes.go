package analytichttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/mailom-erp/mailom-erp/internal/rbac"
)

// MountRoutes registers the cost-analysis endpoint.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAny(rbac.PermReportCostAnalysis))
		r.Get("/cost-analysis", h.handleCostAnalysis)
	})
}
