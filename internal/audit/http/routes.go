package audithttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/mailom-erp/mailom-erp/internal/rbac"
)

// MountRoutes registers the audit timeline endpoints.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(gr chi.Router) {
		gr.Use(guard.RequireAll(rbac.PermSystemManage))
		gr.Get("/audit-logs", h.handleTimeline)
		gr.Get("/audit-logs/export.csv", h.handleExport)
	})
}
