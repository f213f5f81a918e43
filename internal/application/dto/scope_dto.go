package dto

// ScopeResponse scope activo de la sesión.
type ScopeResponse struct {
	BusinessID string `json:"business_id"`
	LocationID string `json:"location_id,omitempty"`
	Role       string `json:"role"`
	Source     string `json:"source"`
}

// SelectScopeRequest body para PUT /api/scope.
type SelectScopeRequest struct {
	BusinessID string `json:"business_id"`
	LocationID string `json:"location_id,omitempty"`
}
