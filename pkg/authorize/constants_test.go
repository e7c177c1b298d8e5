package authorize

import (
	"testing"

	"github.com/google/uuid"
)

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		expected bool
	}{
		// Valid domains
		{"sys domain", DomainSys, true},
		{"valid unit domain", Domain("unit:550e8400-e29b-41d4-a716-446655440000"), true},

		// Invalid domains
		{"empty domain", Domain(""), false},
		{"random string", Domain("random"), false},
		{"unit without uuid", Domain("unit:"), false},
		{"unit with invalid uuid", Domain("unit:not-a-uuid"), false},
		{"unknown prefix", Domain("clinic:550e8400-e29b-41d4-a716-446655440000"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidDomain(tt.domain)
			if result != tt.expected {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.domain, result, tt.expected)
			}
		})
	}
}

func TestUnitDomain(t *testing.T) {
	unitID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	expected := Domain("unit:550e8400-e29b-41d4-a716-446655440000")

	result := UnitDomain(unitID)
	if result != expected {
		t.Errorf("UnitDomain(%q) = %q, want %q", unitID, result, expected)
	}
}

func TestRolePredicates(t *testing.T) {
	for _, r := range Roles {
		if !r.IsValid() {
			t.Errorf("role %q should be valid", r)
		}
		if _, ok := RoleDisplayNamesPT[r]; !ok {
			t.Errorf("role %q has no display name", r)
		}
	}

	if Role("superuser").IsValid() {
		t.Error("unknown role must not be valid")
	}
	if !RoleCoordinator.IsSupervisor() || !RoleAdmin.IsSupervisor() {
		t.Error("coordinator and admin are supervisors")
	}
	for _, r := range []Role{RoleTherapist, RoleIntern, RoleReception, RoleGuardian, Role("")} {
		if r.IsSupervisor() {
			t.Errorf("role %q must not be a supervisor", r)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Coordinator "); !ok || r != RoleCoordinator {
		t.Errorf("ParseRole() = %q, %v", r, ok)
	}
	if _, ok := ParseRole("owner"); ok {
		t.Error("owner is not a role")
	}
}
