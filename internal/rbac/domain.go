package rbac

// Role enumerates the access levels recognised by the system.
type Role string

const (
	RoleUser     Role = "USER"
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Permission names. Grouped by the area of the application they gate.
const (
	PermDashboardView = "dashboard.view"

	PermProductView   = "product.view"
	PermProductCreate = "product.create"
	PermProductEdit   = "product.edit"
	PermProductDelete = "product.delete"
	PermStockManage   = "stock.manage"

	PermSaleView   = "sale.view"
	PermSaleCreate = "sale.create"
	PermSaleEdit   = "sale.edit"
	PermSaleDelete = "sale.delete"

	PermPurchaseView   = "purchase.view"
	PermPurchaseCreate = "purchase.create"
	PermPurchaseEdit   = "purchase.edit"
	PermPurchaseDelete = "purchase.delete"

	PermReportView         = "report.view"
	PermReportCostAnalysis = "report.cost_analysis"
	PermReportExport       = "report.export"

	PermGardenView   = "garden.view"
	PermGardenManage = "garden.manage"
	PermGardenDelete = "garden.delete"

	PermCustomerView = "customer.view"

	PermUserView   = "user.view"
	PermUserManage = "user.manage"

	PermDataImport = "data.import"
	PermDataExport = "data.export"

	PermSystemManage = "system.manage"
)

// rolePermissions is the static role hierarchy. Roles are cumulative by
// construction rather than by inheritance, so each entry lists its full
// permission set.
var rolePermissions = map[Role][]string{
	RoleUser: {
		PermProductView,
		PermGardenView,
	},
	RoleEmployee: {
		PermDashboardView,
		PermProductView,
		PermGardenView,
		PermCustomerView,
		PermStockManage,
		PermProductCreate,
		PermProductEdit,
		PermSaleView,
		PermSaleCreate,
		PermSaleEdit,
	},
	RoleManager: {
		PermDashboardView,
		PermProductView,
		PermGardenView,
		PermCustomerView,
		PermStockManage,
		PermProductCreate,
		PermProductEdit,
		PermProductDelete,
		PermSaleView,
		PermSaleCreate,
		PermSaleEdit,
		PermSaleDelete,
		PermPurchaseView,
		PermPurchaseCreate,
		PermPurchaseEdit,
		PermPurchaseDelete,
		PermReportView,
		PermReportCostAnalysis,
		PermReportExport,
		PermGardenManage,
		PermDataImport,
		PermDataExport,
	},
	RoleAdmin: {
		PermDashboardView,
		PermProductView,
		PermGardenView,
		PermCustomerView,
		PermStockManage,
		PermProductCreate,
		PermProductEdit,
		PermProductDelete,
		PermSaleView,
		PermSaleCreate,
		PermSaleEdit,
		PermSaleDelete,
		PermPurchaseView,
		PermPurchaseCreate,
		PermPurchaseEdit,
		PermPurchaseDelete,
		PermReportView,
		PermReportCostAnalysis,
		PermReportExport,
		PermGardenManage,
		PermGardenDelete,
		PermUserView,
		PermUserManage,
		PermDataImport,
		PermDataExport,
		PermSystemManage,
	},
}

// PermissionsForRole returns the permission set granted to a role.
func PermissionsForRole(role Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// ValidRole reports whether the value is a known role.
func ValidRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}
