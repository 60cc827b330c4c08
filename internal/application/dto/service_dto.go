package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceRequest body de alta o edición de un servicio del catálogo.
// Status vacío en el alta vale ativo; en la edición conserva el actual.
type ServiceRequest struct {
	Nome               string          `json:"nome" validate:"required,max=255"`
	TipoServicoID      string          `json:"tipo_servico_id"`
	CategoriaServicoID string          `json:"categoria_servico_id"`
	PrazoInicio        int             `json:"prazo_inicio" validate:"min=0"`
	PrazoEntrega       int             `json:"prazo_entrega" validate:"min=0"`
	Valor              decimal.Decimal `json:"valor" swaggertype:"string" example:"250.00"`
	Descricao          string          `json:"descricao" validate:"max=2000"`
	Status             string          `json:"status" validate:"omitempty,oneof=ativo inativo"`
}

// ServiceResponse servicio tal como está en servicos.
type ServiceResponse struct {
	ID                 string          `json:"id"`
	Nome               string          `json:"nome"`
	TipoServicoID      string          `json:"tipo_servico_id,omitempty"`
	CategoriaServicoID string          `json:"categoria_servico_id,omitempty"`
	PrazoInicio        int             `json:"prazo_inicio"`
	PrazoEntrega       int             `json:"prazo_entrega"`
	Valor              decimal.Decimal `json:"valor" swaggertype:"string"`
	Descricao          string          `json:"descricao,omitempty"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ServiceLookupResponse tipo o categoría de servicio.
type ServiceLookupResponse struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao,omitempty"`
}
