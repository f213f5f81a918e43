package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	apphttp "github.com/jhoicas/tenant-stock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/tenant-stock-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testSessionID = "00000000-0000-0000-0000-0000000000aa"
	testIssuer    = "tenant-stock-test"
	testExpMin    = 60
)

// buildAuthApp aplicación mínima con AuthMiddleware y un handler que devuelve los locals.
func buildAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":     apphttp.GetUserID(c),
				"session_id":  apphttp.GetSessionID(c),
				"super_admin": apphttp.IsSuperAdmin(c),
			})
		},
	)
	return app
}

func doAuthRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValido_CargaLocals(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testSessionID, true, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doAuthRequest(t, buildAuthApp(), "Bearer "+tok)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testSessionID, body["session_id"])
	assert.Equal(t, true, body["super_admin"])
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	resp := doAuthRequest(t, buildAuthApp(), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	resp := doAuthRequest(t, buildAuthApp(), "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_FirmaIncorrecta_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secret", testUserID, testSessionID, false, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doAuthRequest(t, buildAuthApp(), "Bearer "+tok)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testSessionID, false, testIssuer, -1)
	require.NoError(t, err)

	resp := doAuthRequest(t, buildAuthApp(), "Bearer "+tok)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
