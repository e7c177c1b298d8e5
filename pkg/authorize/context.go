package authorize

import (
	"github.com/google/uuid"
)

// Actor is the explicit request context handed to every core operation:
// who is acting, with which role, inside which unit. UnitID is nil when no
// unit is selected.
type Actor struct {
	UserID uuid.UUID
	Role   Role
	UnitID *uuid.UUID
}

// HasUnit reports whether a unit is selected.
func (a Actor) HasUnit() bool {
	return a.UnitID != nil && *a.UnitID != uuid.Nil
}

// Unit returns the selected unit or uuid.Nil.
func (a Actor) Unit() uuid.UUID {
	if !a.HasUnit() {
		return uuid.Nil
	}
	return *a.UnitID
}

// Can checks the static matrix only.
func (a Actor) Can(resource Resource, action Action) bool {
	return Allows(a.Role, resource, action)
}

func (a Actor) IsAdmin() bool      { return a.Role.IsAdmin() }
func (a Actor) IsSupervisor() bool { return a.Role.IsSupervisor() }

// Subject is the casbin subject of the actor.
func (a Actor) Subject() GroupSubject {
	return GroupSubject(a.UserID.String())
}

// GroupSubject is the g.sub in Casbin: a concrete user id.
type GroupSubject string
