//nolint:revive // types is a standard Go package name pattern
package types

import "slices"

// Role is an authorization tier held by a user.
type Role string

const (
	// RoleConsultant is the default tier: a consultant only sees the dossiers they manage.
	RoleConsultant Role = "consultant"
	// RoleBusinessManager manages candidates; sees the dossiers they created.
	RoleBusinessManager Role = "business_manager"
	// RoleAdmin sees every dossier and manages user roles.
	RoleAdmin Role = "admin"
)

// AllRoles lists the tiers from lowest to highest.
var AllRoles = []Role{RoleConsultant, RoleBusinessManager, RoleAdmin}

// IsValid reports whether r is a known tier.
func (r Role) IsValid() bool {
	return slices.Contains(AllRoles, r)
}

// rank orders tiers; unknown roles rank below consultant.
func (r Role) rank() int {
	return slices.Index(AllRoles, r)
}

// EffectiveRole returns the highest tier among the given role names.
// Users without any known role are consultants.
func EffectiveRole(roles []string) Role {
	best := RoleConsultant
	for _, name := range roles {
		r := Role(name)
		if r.rank() > best.rank() {
			best = r
		}
	}
	return best
}

// HasRole reports whether role is present in roles.
func HasRole(roles []string, role Role) bool {
	return slices.Contains(roles, string(role))
}

// CanListAllProfiles reports whether the holder of roles may list every dossier.
func CanListAllProfiles(roles []string) bool {
	return EffectiveRole(roles) == RoleAdmin
}
