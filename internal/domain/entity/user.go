package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Estados de usuario.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User representa un usuario del sistema.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string // admin, bodeguero, vendedor
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si el rol es uno de los conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleBodeguero, RoleVendedor:
		return true
	}
	return false
}
