// Package schema describe qué columnas opcionales existen físicamente en el almacenamiento.
// Se resuelve una sola vez al arrancar; el resto del código consulta el descriptor
// en lugar de inspeccionar la base en cada operación.
package schema

// ItemColumns columnas opcionales de inventory_items.
type ItemColumns struct {
	SellingPrice     bool
	SoldLocation     bool
	ReceivedLocation bool
	Quantity         bool
	AssignedAgent    bool
}

// AuditColumns columnas opcionales de audit_entries. details siempre existe.
type AuditColumns struct {
	BusinessID bool
	EntityID   bool
	Actor      bool
	Diff       bool
	HashChain  bool // prev_hash + hash
}

// Capabilities descriptor completo.
type Capabilities struct {
	Item  ItemColumns
	Audit AuditColumns
}

// Full descriptor con todas las columnas presentes (esquema embebido actual).
func Full() Capabilities {
	return Capabilities{
		Item: ItemColumns{
			SellingPrice:     true,
			SoldLocation:     true,
			ReceivedLocation: true,
			Quantity:         true,
			AssignedAgent:    true,
		},
		Audit: AuditColumns{
			BusinessID: true,
			EntityID:   true,
			Actor:      true,
			Diff:       true,
			HashChain:  true,
		},
	}
}

// FromColumns construye el descriptor a partir del listado de columnas por tabla
// (p. ej. el resultado de information_schema.columns).
func FromColumns(columns map[string][]string) Capabilities {
	has := func(table, col string) bool {
		for _, c := range columns[table] {
			if c == col {
				return true
			}
		}
		return false
	}
	return Capabilities{
		Item: ItemColumns{
			SellingPrice:     has("inventory_items", "selling_price"),
			SoldLocation:     has("inventory_items", "sold_location_id"),
			ReceivedLocation: has("inventory_items", "received_location_id"),
			Quantity:         has("inventory_items", "quantity"),
			AssignedAgent:    has("inventory_items", "assigned_agent_id"),
		},
		Audit: AuditColumns{
			BusinessID: has("audit_entries", "business_id"),
			EntityID:   has("audit_entries", "entity_id"),
			Actor:      has("audit_entries", "actor_id"),
			Diff:       has("audit_entries", "diff"),
			HashChain:  has("audit_entries", "prev_hash") && has("audit_entries", "hash"),
		},
	}
}

// Writable filtra fields dejando solo los que el esquema puede persistir.
// Las columnas obligatorias siempre pasan.
func (c Capabilities) Writable(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if c.itemHas(f) {
			out = append(out, f)
		}
	}
	return out
}

func (c Capabilities) itemHas(field string) bool {
	switch field {
	case "selling_price":
		return c.Item.SellingPrice
	case "sold_location_id":
		return c.Item.SoldLocation
	case "received_location_id":
		return c.Item.ReceivedLocation
	case "quantity":
		return c.Item.Quantity
	case "assigned_agent_id":
		return c.Item.AssignedAgent
	}
	return true
}
