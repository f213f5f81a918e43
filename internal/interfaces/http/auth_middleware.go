package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/pkg/jwt"
)

// Locals keys de identidad en Fiber. El negocio activo no viaja en el token.
const (
	LocalUserID     = "user_id"
	LocalSessionID  = "session_id"
	LocalSuperAdmin = "super_admin"
)

// AuthMiddleware valida el Bearer Token JWT y deja UserID, SessionID y el flag de super-admin en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, sessionID, superAdmin, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalSessionID, sessionID)
		c.Locals(LocalSuperAdmin, superAdmin)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetSessionID devuelve el id de sesión del token.
func GetSessionID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSessionID).(string)
	return s
}

// IsSuperAdmin indica si el token pertenece a un super-admin de plataforma.
func IsSuperAdmin(c *fiber.Ctx) bool {
	b, _ := c.Locals(LocalSuperAdmin).(bool)
	return b
}
