package domain

// Role of the caller as asserted by the gateway.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
	// RoleSystem is used for transitions triggered by the service itself.
	RoleSystem Role = "system"
)

// IsValid reports whether r may be supplied by a client.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleOwner, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// Actor is the identity on whose behalf an operation runs.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin returns true for administrators.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SystemActor is the actor for automatic transitions.
var SystemActor = Actor{ID: 0, Role: RoleSystem}
