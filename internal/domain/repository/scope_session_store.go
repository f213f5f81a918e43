package repository

import "context"

// ScopeSelection selección persistida de (negocio, ubicación) para una sesión.
type ScopeSelection struct {
	BusinessID string `json:"business_id"`
	LocationID string `json:"location_id,omitempty"`
}

// ScopeSessionStore estado de sesión para la resolución de scope.
// Load devuelve (nil, nil) si la sesión no tiene selección.
type ScopeSessionStore interface {
	Load(ctx context.Context, sessionID string) (*ScopeSelection, error)
	Save(ctx context.Context, sessionID string, sel ScopeSelection) error
	Clear(ctx context.Context, sessionID string) error
}
