package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de emisión de la NFS-e (columna status_emissao).
const (
	InvoiceStatusPending   = "pendente"
	InvoiceStatusIssued    = "emitida"
	InvoiceStatusCancelled = "cancelada"
)

// Invoice representa una nota fiscal de servicio (tabla notas_fiscais).
// Numero y DataEmissao los asigna el gateway y llegan por webhook.
type Invoice struct {
	ID             string
	CompanyID      string
	Numero         string
	EmissionStatus string // pendente, emitida, cancelada
	DataEmissao    string // tal como la envía el gateway
	ValorTotal     decimal.Decimal
	Descricao      string
	CodigoServico  string
	Tomador        Tomador
	EnotasID       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Tomador cliente que recibe la nota.
type Tomador struct {
	RazaoSocial string
	Email       string
	CpfCnpj     string
}

// InvoiceIssuance campos que escribe el evento NotaFiscalEmitida.
type InvoiceIssuance struct {
	InvoiceID   string
	Numero      string
	DataEmissao string
}
