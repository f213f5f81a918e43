package dto

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Status       string `json:"status"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT con id de sesión; la selección de negocio se guarda por sesión.
type LoginResponse struct {
	Token     string       `json:"token"`
	SessionID string       `json:"session_id"`
	User      UserResponse `json:"user"`
}
