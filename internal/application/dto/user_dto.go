package dto

import "time"

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"nombre"`
	Role      string    `json:"rol"`
	Status    string    `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest alta de usuario por un administrador.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"nombre" validate:"max=150"`
	Role     string `json:"rol" validate:"required,oneof=admin bodeguero vendedor"`
}

// LoginRequest entrada para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // segundos
	User      UserResponse `json:"usuario"`
}
