package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/internal/application/inventory"
)

// InventoryHandler recepción, venta y consulta de ítems (protegido, requiere scope).
type InventoryHandler struct {
	engine *inventory.Engine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.Engine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// Receive godoc
// @Summary      Recibir ítem
// @Description  Crea el ítem o refresca uno existente con el mismo identificador en el negocio activo.
//
//	Reenviar la misma recepción no produce cambios.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveItemRequest  true  "identifier, product_id, location_id opcional, order_price"
// @Success      201   {object}  dto.ReceiveItemResponse
// @Success      200   {object}  dto.ReceiveItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.engine.Receive(c.UserContext(), inventory.ReceiveInput{
		Caller:          CallerFrom(c),
		Scope:           GetScope(c),
		Identifier:      in.Identifier,
		ProductID:       in.ProductID,
		LocationID:      in.LocationID,
		OrderPrice:      in.OrderPrice,
		AssignedAgentID: in.AssignedAgentID,
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.ReceiveItemResponse{
		Item:    toItemResponse(res.Item),
		Created: res.Created,
		Outcome: res.Outcome,
	})
}

// Sell godoc
// @Summary      Vender ítem
// @Description  Marca el ítem como vendido exactamente una vez. Si ya estaba vendido responde 409
//
//	con la venta existente. Con nowait=true un ítem bloqueado responde 503 en lugar de esperar.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        nowait  query  bool                 false  "No esperar el bloqueo de la fila"
// @Param        body    body   dto.SellItemRequest  true   "identifier, price, location_id opcional"
// @Success      200  {object}  dto.SellItemResponse
// @Failure      404  {object}  dto.SellItemResponse
// @Failure      409  {object}  dto.SellItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      428  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/sell [post]
func (h *InventoryHandler) Sell(c *fiber.Ctx) error {
	var in dto.SellItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input := inventory.SellInput{
		Caller:        CallerFrom(c),
		Scope:         GetScope(c),
		Identifier:    in.Identifier,
		Price:         in.Price,
		LocationID:    in.LocationID,
		SoldAt:        in.SoldAt,
		CommissionPct: in.CommissionPct,
	}
	if c.Query("nowait") != "" {
		nowait := c.QueryBool("nowait")
		input.NoWait = &nowait
	}
	res, err := h.engine.Sell(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	switch res.Code {
	case inventory.SellItemNotFound:
		status = fiber.StatusNotFound
	case inventory.SellItemAlreadySold, inventory.SellItemNotInExpectedState:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(dto.SellItemResponse{
		Code:       string(res.Code),
		Message:    res.Message,
		Item:       toItemResponsePtr(res.Item),
		Sale:       toSaleResponse(res.Sale),
		Commission: toCommissionResponse(res.Commission),
	})
}

// Lookup godoc
// @Summary      Consultar ítem por identificador
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        identifier  path  string  true  "Código escaneado (se normaliza)"
// @Success      200  {object}  dto.LookupItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{identifier} [get]
func (h *InventoryHandler) Lookup(c *fiber.Ctx) error {
	res, err := h.engine.Lookup(c.UserContext(), inventory.LookupInput{
		Caller:     CallerFrom(c),
		Scope:      GetScope(c),
		Identifier: c.Params("identifier"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LookupItemResponse{
		Item:     toItemResponse(res.Item),
		LastSale: toSaleResponse(res.LastSale),
	})
}
