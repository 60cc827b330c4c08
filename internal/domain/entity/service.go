package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un servicio del catálogo (columna status).
const (
	ServiceStatusActive   = "ativo"
	ServiceStatusInactive = "inativo"
)

// Service servicio del catálogo del usuario (tabla servicos).
// PrazoInicio y PrazoEntrega son días.
type Service struct {
	ID                 string
	UserID             string
	Nome               string
	TipoServicoID      string
	CategoriaServicoID string
	PrazoInicio        int
	PrazoEntrega       int
	Valor              decimal.Decimal
	Descricao          string
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ServiceLookup fila de tipos_servico o categorias_servico.
type ServiceLookup struct {
	ID        string
	UserID    string
	Nome      string
	Descricao string
}
