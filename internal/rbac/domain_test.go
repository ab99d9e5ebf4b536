package rbac

import "testing"

func TestRoleHierarchyIsCumulative(t *testing.T) {
	userPerms := toSet(PermissionsForRole(RoleUser))
	employeePerms := toSet(PermissionsForRole(RoleEmployee))
	managerPerms := toSet(PermissionsForRole(RoleManager))
	adminPerms := toSet(PermissionsForRole(RoleAdmin))

	for p := range userPerms {
		if _, ok := employeePerms[p]; !ok {
			t.Errorf("employee missing base permission %q", p)
		}
	}
	for p := range employeePerms {
		if _, ok := managerPerms[p]; !ok {
			t.Errorf("manager missing employee permission %q", p)
		}
	}
	for p := range managerPerms {
		if _, ok := adminPerms[p]; !ok {
			t.Errorf("admin missing manager permission %q", p)
		}
	}
}

func TestRoleBoundaries(t *testing.T) {
	cases := []struct {
		role Role
		perm string
		want bool
	}{
		{RoleUser, PermSaleCreate, false},
		{RoleEmployee, PermSaleCreate, true},
		{RoleEmployee, PermPurchaseCreate, false},
		{RoleManager, PermPurchaseCreate, true},
		{RoleManager, PermUserManage, false},
		{RoleAdmin, PermUserManage, true},
		{RoleManager, PermReportCostAnalysis, true},
		{RoleEmployee, PermReportCostAnalysis, false},
	}
	for _, tc := range cases {
		perms := toSet(PermissionsForRole(tc.role))
		_, got := perms[tc.perm]
		if got != tc.want {
			t.Errorf("%s has %s = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleManager) {
		t.Fatal("MANAGER should be valid")
	}
	if ValidRole(Role("SUPERVISOR")) {
		t.Fatal("unknown role should be invalid")
	}
}

func toSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}
