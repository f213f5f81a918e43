package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/internal/application/audit"
	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

// AuditHandler lectura del log de auditoría del negocio activo.
type AuditHandler struct {
	repo repository.AuditRepository
}

// NewAuditHandler construye el handler.
func NewAuditHandler(repo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// List godoc
// @Summary      Log de auditoría
// @Description  Entradas más recientes del negocio activo en orden de inserción. Con verify=true
//
//	recorre la cadena completa de hashes e informa si está intacta.
//
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int   false  "Máximo de entradas (por defecto 50, máximo 500)"
// @Param        verify  query  bool  false  "Verificar la cadena de hashes"
// @Success      200  {object}  dto.AuditListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      428  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	sc := GetScope(c)
	if sc == nil {
		return writeError(c, domain.ErrNoActiveTenant)
	}
	if !membership.FullVisibility(sc.Role) {
		return writeError(c, domain.ErrForbidden)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit inválido"})
	}
	page.DefaultPage()

	verify := c.QueryBool("verify")
	limit := page.Limit
	if verify {
		limit = 0
	}
	entries, err := h.repo.ListByBusiness(c.UserContext(), sc.BusinessID, limit)
	if err != nil {
		return writeError(c, err)
	}

	out := dto.AuditListResponse{Entries: make([]dto.AuditEntryResponse, 0, len(entries))}
	if verify {
		valid := audit.VerifyChain(entries) < 0
		out.ChainValid = &valid
		if len(entries) > page.Limit {
			entries = entries[len(entries)-page.Limit:]
		}
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, toAuditResponse(e))
	}
	return c.JSON(out)
}
