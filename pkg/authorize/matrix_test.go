package authorize

import "testing"

func TestAllows_SupervisionActionsOnlyForSupervisors(t *testing.T) {
	for _, role := range append(Roles, Role(""), Role("unknown")) {
		for _, act := range []Action{ActionApprove, ActionRequestRevision} {
			got := Allows(role, ResourceEvolutions, act)
			want := role == RoleCoordinator || role == RoleAdmin
			if got != want {
				t.Errorf("Allows(%q, evolutions, %q) = %v, want %v", role, act, got, want)
			}
		}
	}
}

func TestAllows_UnknownRoleDeniesEverything(t *testing.T) {
	for _, res := range Resources {
		for _, act := range Actions {
			if Allows(Role("superuser"), res, act) {
				t.Errorf("unknown role allowed %s:%s", res, act)
			}
		}
	}
}

func TestAllows_UnknownResourceOrAction(t *testing.T) {
	if Allows(RoleAdmin, Resource("billing"), ActionView) {
		t.Error("unknown resource must be denied even for admins")
	}
	if Allows(RoleAdmin, ResourcePacientes, Action("delete")) {
		t.Error("unknown action must be denied even for admins")
	}
}

func TestAllows_Matrix(t *testing.T) {
	tests := []struct {
		role     Role
		resource Resource
		action   Action
		want     bool
	}{
		{RoleAdmin, ResourceUnits, ActionManage, true},
		{RoleAdmin, ResourceUsers, ActionManage, true},
		{RoleCoordinator, ResourceUnits, ActionManage, false},
		{RoleCoordinator, ResourceUsers, ActionCreate, true},
		{RoleCoordinator, ResourceUsers, ActionManage, false},
		{RoleTherapist, ResourceEvolutions, ActionCreate, true},
		{RoleTherapist, ResourcePacientes, ActionManage, false},
		{RoleIntern, ResourceEvolutions, ActionEdit, true},
		{RoleIntern, ResourcePacientes, ActionCreate, false},
		{RoleIntern, ResourceReports, ActionView, false},
		{RoleReception, ResourceAgenda, ActionCreate, true},
		{RoleReception, ResourceEvolutions, ActionView, false},
		{RoleReception, ResourceClinicalRecords, ActionView, false},
		{RoleGuardian, ResourcePacientes, ActionView, true},
		{RoleGuardian, ResourcePacientes, ActionEdit, false},
		{RoleGuardian, ResourceEvolutions, ActionView, false},
		{RoleGuardian, ResourceNotifications, ActionUpdate, true},
	}

	for _, tt := range tests {
		if got := Allows(tt.role, tt.resource, tt.action); got != tt.want {
			t.Errorf("Allows(%q, %q, %q) = %v, want %v", tt.role, tt.resource, tt.action, got, tt.want)
		}
	}
}

func TestSeedPoliciesMirrorMatrix(t *testing.T) {
	rules := SeedPolicies()
	if len(rules) == 0 {
		t.Fatal("expected seeded policies")
	}
	for _, r := range rules {
		if len(r) != 3 {
			t.Fatalf("rule %v has %d fields", r, len(r))
		}
		if !Allows(Role(r[0]), Resource(r[1]), Action(r[2])) {
			t.Errorf("seeded rule %v not allowed by the matrix", r)
		}
	}
}

func TestPermissions(t *testing.T) {
	guardian := Permissions(RoleGuardian)
	if _, ok := guardian[ResourceEvolutions]; ok {
		t.Error("guardian must not see evolutions")
	}
	if got := guardian[ResourceNotifications]; len(got) != 2 {
		t.Errorf("guardian notifications = %v, want view and update", got)
	}
	if got := Permissions(RoleAdmin); len(got) != len(Resources) {
		t.Errorf("admin covers %d resources, want %d", len(got), len(Resources))
	}
}
