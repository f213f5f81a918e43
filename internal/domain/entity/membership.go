package entity

import "time"

// Role rol de un usuario dentro de un negocio.
type Role string

// Roles de membresía.
const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleAgent   Role = "AGENT"
	RoleAdmin   Role = "ADMIN"
)

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Estados de membresía.
const (
	MembershipPending  = "PENDING"
	MembershipActive   = "ACTIVE"
	MembershipRejected = "REJECTED"
)

// Membership vincula un usuario a un negocio con un rol y un estado.
// LocationID fija al usuario a una ubicación (obligatorio en la práctica para AGENT).
type Membership struct {
	ID         string
	UserID     string
	BusinessID string
	Role       Role
	Status     string
	LocationID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive indica si la membresía está aprobada.
func (m *Membership) IsActive() bool {
	return m != nil && m.Status == MembershipActive
}

// PinnedLocation devuelve la ubicación fijada o "" si no hay.
func (m *Membership) PinnedLocation() string {
	if m == nil || m.LocationID == nil {
		return ""
	}
	return *m.LocationID
}
