package authorize

import (
	"strings"

	"github.com/google/uuid"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionUpdate Action = "update"
	ActionManage Action = "manage"

	// Supervision actions on evolutions
	ActionApprove         Action = "approve"
	ActionRequestRevision Action = "request_revision"
)

// Actions lists the closed action vocabulary.
var Actions = []Action{
	ActionView, ActionCreate, ActionEdit, ActionUpdate, ActionManage,
	ActionApprove, ActionRequestRevision,
}

// ----------------------------
// Resources
// ----------------------------

const (
	ResourceClinicalRecords Resource = "clinical_records"
	ResourceAgenda          Resource = "agenda"
	ResourceUsers           Resource = "users"
	ResourceSettings        Resource = "settings"
	ResourcePacientes       Resource = "pacientes"
	ResourceProntuarios     Resource = "prontuarios"
	ResourceEvolutions      Resource = "evolutions"
	ResourceProtocols       Resource = "protocols"
	ResourceReports         Resource = "reports"
	ResourceUnits           Resource = "units"
	ResourceNotifications   Resource = "notifications"
)

// Resources lists the closed resource vocabulary.
var Resources = []Resource{
	ResourceClinicalRecords, ResourceAgenda, ResourceUsers, ResourceSettings,
	ResourcePacientes, ResourceProntuarios, ResourceEvolutions, ResourceProtocols,
	ResourceReports, ResourceUnits, ResourceNotifications,
}

// ----------------------------
// Roles
// ----------------------------
//
// A profile holds exactly one organizational role. Memberships repeat the
// role per unit and become casbin grouping rows.

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleTherapist   Role = "therapist"
	RoleIntern      Role = "intern"
	RoleReception   Role = "reception"
	RoleGuardian    Role = "guardian"
)

// Roles lists every role in display order.
var Roles = []Role{
	RoleAdmin, RoleCoordinator, RoleTherapist, RoleIntern, RoleReception, RoleGuardian,
}

// Portuguese display names
var RoleDisplayNamesPT = map[Role]string{
	RoleAdmin:       "Administrador",
	RoleCoordinator: "Coordenador",
	RoleTherapist:   "Terapeuta",
	RoleIntern:      "Estagiário",
	RoleReception:   "Recepção",
	RoleGuardian:    "Responsável",
}

func (r Role) String() string { return string(r) }

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleTherapist, RoleIntern, RoleReception, RoleGuardian:
		return true
	default:
		return false
	}
}

func (r Role) IsAdmin() bool       { return r == RoleAdmin }
func (r Role) IsCoordinator() bool { return r == RoleCoordinator }
func (r Role) IsTherapist() bool   { return r == RoleTherapist }
func (r Role) IsReception() bool   { return r == RoleReception }

// IsSupervisor reports whether the role may co-sign evolutions.
func (r Role) IsSupervisor() bool { return r == RoleCoordinator || r == RoleAdmin }

// ParseRole converts a stored or user supplied value to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys        Domain = "sys"
	DomainPrefixUnit Domain = "unit:"
)

func UnitDomain(unitID uuid.UUID) Domain {
	return DomainPrefixUnit + Domain(unitID.String())
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainSys {
		return true
	}
	s, ok := strings.CutPrefix(string(d), string(DomainPrefixUnit))
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
