package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Acciones registradas en la auditoría.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionSold   = "SOLD"
)

// Tipos de entidad auditados.
const (
	AuditEntityItem = "inventory_item"
)

// AuditEntry línea de auditoría, solo inserción. EntityID puede quedar nil si el objeto
// se elimina después; la línea se conserva.
type AuditEntry struct {
	ID         string
	BusinessID string
	EntityType string
	EntityID   *string
	Action     string
	ActorID    string
	At         time.Time
	Diff       string
	Details    string // tupla completa en texto, siempre presente
	PrevHash   string
	Hash       string
}

// ComputeHash sha256 del JSON (claves ordenadas) de la entrada encadenada a prev.
func (e *AuditEntry) ComputeHash(prev string) string {
	entityID := ""
	if e.EntityID != nil {
		entityID = *e.EntityID
	}
	// json.Marshal ordena las claves de un map.
	payload := map[string]string{
		"prev":      prev,
		"business":  e.BusinessID,
		"entity":    e.EntityType,
		"entity_id": entityID,
		"action":    e.Action,
		"actor":     e.ActorID,
		"at":        e.At.UTC().Format(time.RFC3339Nano),
		"diff":      e.Diff,
	}
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
