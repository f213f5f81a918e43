package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// El negocio activo NO viaja en el token: se resuelve por request a partir de la sesión (sid).
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	SessionID  string `json:"sid"`
	SuperAdmin bool   `json:"super_admin,omitempty"`
}

// Generate genera un token JWT firmado con userID, el id de sesión y el flag de super-admin.
func Generate(secret, userID, sessionID string, superAdmin bool, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:     userID,
		SessionID:  sessionID,
		SuperAdmin: superAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve userID, sessionID y el flag de super-admin.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (userID, sessionID string, superAdmin bool, err error) {
	if secret == "" {
		return "", "", false, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", false, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", false, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		return "", "", false, fmt.Errorf("claim user_id vacío")
	}
	return claims.UserID, claims.SessionID, claims.SuperAdmin, nil
}
