// Package agenda implements the appointment visibility engine: who may
// see which appointments, narrowed to calendar windows and returned in
// canonical order. Everything here is pure computation over snapshots;
// persistence lives behind the repository interfaces in service.go.
package agenda

import "agendagov/internal/model"

// ResolveVisible computes the subset of appointments the viewer is
// authorized to see, before any date windowing.
//
// Admins see everything. The mayor sees their own calendar plus the
// deputy's shared entries, and symmetrically for the deputy. Viewers
// fail closed: no grants, no appointments. A grant on an executive's
// calendar transitively includes the counterpart executive's shared
// entries, mirroring what that executive sees on their own screen.
//
// Duplicates across grant paths are collapsed by appointment id.
// Grant ids that resolve to no user are skipped.
func ResolveVisible(viewerID string, role model.Role, delegated []string, appointments []model.Appointment, users []model.User) []model.Appointment {
	mayor := findByRole(users, model.RoleMayor)
	deputy := findByRole(users, model.RoleDeputy)

	switch role {
	case model.RoleAdmin:
		out := make([]model.Appointment, len(appointments))
		copy(out, appointments)
		return out

	case model.RoleMayor:
		var out []model.Appointment
		for _, a := range appointments {
			if a.AssignedTo == viewerID || (a.IsShared && deputy != nil && a.AssignedTo == deputy.ID) {
				out = append(out, a)
			}
		}
		return out

	case model.RoleDeputy:
		var out []model.Appointment
		for _, a := range appointments {
			if a.AssignedTo == viewerID || (a.IsShared && mayor != nil && a.AssignedTo == mayor.ID) {
				out = append(out, a)
			}
		}
		return out

	case model.RoleViewer:
		if len(delegated) == 0 {
			return nil
		}
		seen := make(map[string]bool)
		var out []model.Appointment
		add := func(a model.Appointment) {
			if !seen[a.ID] {
				seen[a.ID] = true
				out = append(out, a)
			}
		}
		for _, grantID := range delegated {
			granted := findByID(users, grantID)
			if granted == nil {
				continue
			}
			for _, a := range appointments {
				if a.AssignedTo == grantID {
					add(a)
				}
			}
			if granted.Role == model.RoleMayor && deputy != nil {
				for _, a := range appointments {
					if a.AssignedTo == deputy.ID && a.IsShared {
						add(a)
					}
				}
			}
			if granted.Role == model.RoleDeputy && mayor != nil {
				for _, a := range appointments {
					if a.AssignedTo == mayor.ID && a.IsShared {
						add(a)
					}
				}
			}
		}
		return out
	}

	// Role is a closed type validated at the boundary; anything else
	// yields nothing rather than leaking appointments.
	return nil
}

func findByRole(users []model.User, role model.Role) *model.User {
	for i := range users {
		if users[i].Role == role {
			return &users[i]
		}
	}
	return nil
}

func findByID(users []model.User, id string) *model.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
