package entity

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FieldChange cambio de una columna entre dos versiones de un ítem.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Diff compara before contra after y devuelve solo las columnas que cambiaron,
// en orden estable. Con before nil se reportan todas las columnas con valor.
func Diff(before, after *InventoryItem) []FieldChange {
	if after == nil {
		return nil
	}
	var b InventoryItem
	if before != nil {
		b = *before
	}
	var out []FieldChange
	add := func(field, x, y string) {
		if x != y {
			out = append(out, FieldChange{Field: field, Before: x, After: y})
		}
	}
	add(FieldStatus, b.Status, after.Status)
	add(FieldSoldAt, fmtTime(b.SoldAt), fmtTime(after.SoldAt))
	add(FieldSellingPrice, fmtDecimal(b.SellingPrice), fmtDecimal(after.SellingPrice))
	add(FieldLocation, b.LocationID, after.LocationID)
	add(FieldSoldLocation, fmtString(b.SoldLocationID), fmtString(after.SoldLocationID))
	add(FieldReceivedLocation, fmtString(b.ReceivedLocationID), fmtString(after.ReceivedLocationID))
	add(FieldQuantity, fmtInt(b.Quantity), fmtInt(after.Quantity))
	add(FieldIsActive, fmtBool(before != nil, b.IsActive), strconv.FormatBool(after.IsActive))
	add(FieldProduct, b.ProductID, after.ProductID)
	if before == nil || !b.OrderPrice.Equal(after.OrderPrice) {
		add(FieldOrderPrice, fmtOrderPrice(before, b.OrderPrice), after.OrderPrice.StringFixed(2))
	}
	add(FieldAssignedAgent, fmtString(b.AssignedAgentID), fmtString(after.AssignedAgentID))
	return out
}

// ChangedFields nombres de las columnas presentes en changes.
func ChangedFields(changes []FieldChange) []string {
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	return fields
}

// FormatChanges serializa los cambios como JSON compacto para el detalle de auditoría.
func FormatChanges(changes []FieldChange) string {
	if len(changes) == 0 {
		return "[]"
	}
	b, err := json.Marshal(changes)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func fmtString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fmtInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func fmtBool(present, v bool) string {
	if !present {
		return ""
	}
	return strconv.FormatBool(v)
}

func fmtOrderPrice(before *InventoryItem, d decimal.Decimal) string {
	if before == nil {
		return ""
	}
	return d.StringFixed(2)
}
