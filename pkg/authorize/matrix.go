package authorize

// Allows is the static permission matrix. It is a pure function of role,
// resource and action; every unmatched combination, unknown roles included,
// is denied.
func Allows(role Role, resource Resource, action Action) bool {
	switch role {
	case RoleAdmin:
		return adminAllows(resource, action)
	case RoleCoordinator:
		return coordinatorAllows(resource, action)
	case RoleTherapist:
		return therapistAllows(resource, action)
	case RoleIntern:
		return internAllows(resource, action)
	case RoleReception:
		return receptionAllows(resource, action)
	case RoleGuardian:
		return guardianAllows(resource, action)
	default:
		return false
	}
}

func adminAllows(resource Resource, action Action) bool {
	switch resource {
	case ResourceClinicalRecords, ResourceAgenda, ResourceUsers, ResourceSettings,
		ResourcePacientes, ResourceProntuarios, ResourceProtocols, ResourceReports,
		ResourceUnits, ResourceNotifications:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate, ActionManage)
	case ResourceEvolutions:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate, ActionManage,
			ActionApprove, ActionRequestRevision)
	default:
		return false
	}
}

func coordinatorAllows(resource Resource, action Action) bool {
	switch resource {
	case ResourceClinicalRecords, ResourceProntuarios, ResourcePacientes, ResourceAgenda:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate, ActionManage)
	case ResourceEvolutions:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate,
			ActionApprove, ActionRequestRevision)
	case ResourceUsers:
		return oneOf(action, ActionView, ActionCreate, ActionUpdate)
	case ResourceProtocols:
		return oneOf(action, ActionView, ActionCreate)
	case ResourceSettings, ResourceReports, ResourceUnits:
		return action == ActionView
	case ResourceNotifications:
		return oneOf(action, ActionView, ActionUpdate)
	default:
		return false
	}
}

func therapistAllows(resource Resource, action Action) bool {
	switch resource {
	case ResourceClinicalRecords, ResourceProntuarios, ResourcePacientes:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate)
	case ResourceEvolutions:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate)
	case ResourceAgenda:
		return oneOf(action, ActionView, ActionCreate, ActionUpdate)
	case ResourceProtocols:
		return oneOf(action, ActionView, ActionCreate)
	case ResourceUsers, ResourceSettings, ResourceReports, ResourceUnits:
		return action == ActionView
	case ResourceNotifications:
		return oneOf(action, ActionView, ActionUpdate)
	default:
		return false
	}
}

func internAllows(resource Resource, action Action) bool {
	switch resource {
	case ResourceClinicalRecords, ResourceProntuarios, ResourceEvolutions:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate)
	case ResourcePacientes, ResourceAgenda, ResourceUnits, ResourceSettings:
		return action == ActionView
	case ResourceProtocols:
		return oneOf(action, ActionView, ActionCreate)
	case ResourceNotifications:
		return oneOf(action, ActionView, ActionUpdate)
	default:
		return false
	}
}

func receptionAllows(resource Resource, action Action) bool {
	switch resource {
	case ResourceAgenda:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate, ActionManage)
	case ResourcePacientes:
		return oneOf(action, ActionView, ActionCreate, ActionEdit, ActionUpdate)
	case ResourceUsers, ResourceSettings, ResourceUnits:
		return action == ActionView
	case ResourceNotifications:
		return oneOf(action, ActionView, ActionUpdate)
	default:
		return false
	}
}

// Guardians reach only their linked patients; the patient service narrows
// the rows.
func guardianAllows(resource Resource, action Action) bool {
	switch resource {
	case ResourcePacientes, ResourceAgenda, ResourceUnits:
		return action == ActionView
	case ResourceNotifications:
		return oneOf(action, ActionView, ActionUpdate)
	default:
		return false
	}
}

func oneOf(action Action, allowed ...Action) bool {
	for _, a := range allowed {
		if action == a {
			return true
		}
	}
	return false
}

// Permissions expands the matrix for one role, leaving out resources with no
// allowed action. Clients use it to hide what the user cannot do.
func Permissions(role Role) map[Resource][]Action {
	out := map[Resource][]Action{}
	for _, res := range Resources {
		for _, act := range Actions {
			if Allows(role, res, act) {
				out[res] = append(out[res], act)
			}
		}
	}
	return out
}
