package dto

import "time"

// AuditEntryResponse línea de auditoría.
type AuditEntryResponse struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   *string   `json:"entity_id,omitempty"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	At         time.Time `json:"at"`
	Diff       string    `json:"diff"`
	Hash       string    `json:"hash,omitempty"`
}

// AuditListResponse entradas del negocio y estado de la cadena de hashes.
type AuditListResponse struct {
	Entries    []AuditEntryResponse `json:"entries"`
	ChainValid *bool                `json:"chain_valid,omitempty"`
}
