package entity

import "time"

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User usuario de la plataforma. La pertenencia a negocios se modela con Membership;
// IsSuperAdmin habilita la impersonación y omite los chequeos de membresía.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	IsSuperAdmin bool
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
