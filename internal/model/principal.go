package model

// Roles understood by the access policy.  The edge issues tokens whose
// "roles" claim contains one or more of these values; the core never
// re-validates the token itself.
const (
	RoleAdmin     = "ADMIN"
	RoleOrganizer = "ORGANIZER"
	RoleCustomer  = "CUSTOMER"
)

// Principal is the verified identity attached to a request by the JWT
// middleware.  ID is an opaque string owned by the identity service and is
// compared, never parsed.
type Principal struct {
	ID    string
	Email string
	Roles []string
}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal may bypass ownership checks.
func (p Principal) IsAdmin() bool { return p.HasRole(RoleAdmin) }
