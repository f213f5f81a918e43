package dto

// PageRequest límite para listados (las entradas más recientes).
type PageRequest struct {
	Limit int `query:"limit"`
}

// DefaultPage aplica valores por defecto y el máximo permitido.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
