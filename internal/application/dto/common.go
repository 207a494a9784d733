package dto

// DefaultLimit tamaño de página cuando la query no trae limit.
const DefaultLimit = 20

// PageRequest paginación para listados (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit" json:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset" validate:"min=0"`
}

// DefaultPage aplica el límite por defecto si no vino en la query.
func (p *PageRequest) DefaultPage() {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
