package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
)

// ScopeService operaciones de selección de negocio por sesión.
type ScopeService interface {
	ScopeResolver
	Select(ctx context.Context, c scope.Caller, businessID, locationID string) (scope.Scope, error)
	Clear(ctx context.Context, c scope.Caller) error
}

// ScopeHandler consulta y cambia el negocio activo de la sesión.
type ScopeHandler struct {
	svc ScopeService
}

// NewScopeHandler construye el handler.
func NewScopeHandler(svc ScopeService) *ScopeHandler {
	return &ScopeHandler{svc: svc}
}

// Get godoc
// @Summary      Scope activo
// @Description  Devuelve el negocio y la ubicación resueltos para la petición y la regla que los produjo.
// @Tags         scope
// @Security     Bearer
// @Produce      json
// @Param        as_business  query  string  false  "Impersonación (solo super-admin)"
// @Param        location     query  string  false  "Ubicación solicitada"
// @Success      200  {object}  dto.ScopeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      428  {object}  dto.ErrorResponse
// @Router       /api/scope [get]
func (h *ScopeHandler) Get(c *fiber.Ctx) error {
	sc := GetScope(c)
	if sc == nil {
		return writeError(c, domain.ErrNoActiveTenant)
	}
	return c.JSON(toScopeResponse(*sc))
}

// Put godoc
// @Summary      Seleccionar negocio activo
// @Tags         scope
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SelectScopeRequest  true  "business_id, location_id opcional"
// @Success      200   {object}  dto.ScopeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/scope [put]
func (h *ScopeHandler) Put(c *fiber.Ctx) error {
	var in dto.SelectScopeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.BusinessID = strings.TrimSpace(in.BusinessID)
	if in.BusinessID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "business_id es requerido"})
	}
	sc, err := h.svc.Select(c.UserContext(), CallerFrom(c), in.BusinessID, strings.TrimSpace(in.LocationID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toScopeResponse(sc))
}

// Delete godoc
// @Summary      Limpiar selección de negocio
// @Tags         scope
// @Security     Bearer
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/scope [delete]
func (h *ScopeHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Clear(c.UserContext(), CallerFrom(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toScopeResponse(sc scope.Scope) dto.ScopeResponse {
	return dto.ScopeResponse{
		BusinessID: sc.BusinessID,
		LocationID: sc.LocationID,
		Role:       string(sc.Role),
		Source:     string(sc.Source),
	}
}
