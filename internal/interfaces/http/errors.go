package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// El orden importa: los errores de scope se revisan antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrNoActiveTenant, fiber.StatusPreconditionRequired, "NO_ACTIVE_TENANT", "seleccione un negocio activo"},
	{domain.ErrCrossTenantAccess, fiber.StatusForbidden, "CROSS_TENANT_ACCESS_DENIED", "el recurso no pertenece al negocio activo"},
	{domain.ErrTenantInactive, fiber.StatusForbidden, "TENANT_INACTIVE", "el negocio no está activo"},
	{domain.ErrIdentifierInvalid, fiber.StatusUnprocessableEntity, "IDENTIFIER_INVALID", "identificador inválido"},
	{domain.ErrTransientLock, fiber.StatusServiceUnavailable, "LOCK_CONTENTION", "el ítem está siendo procesado, reintente"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
}

// writeError traduce un error de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.status == fiber.StatusServiceUnavailable {
			c.Set(fiber.HeaderRetryAfter, "1")
		}
		msg := m.message
		if m.status == fiber.StatusBadRequest || m.status == fiber.StatusUnprocessableEntity {
			msg = err.Error()
		}
		return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
