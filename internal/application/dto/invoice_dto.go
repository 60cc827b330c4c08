package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueInvoiceRequest body de emisión de NFS-e.
type IssueInvoiceRequest struct {
	ValorTotal    decimal.Decimal `json:"valor_total" swaggertype:"string" example:"150.00"`
	Descricao     string          `json:"descricao" validate:"required,max=2000"`
	CodigoServico string          `json:"codigo_servico" validate:"required"`
	Tomador       TomadorRequest  `json:"tomador"`
}

// TomadorRequest cliente de la nota.
type TomadorRequest struct {
	RazaoSocial string `json:"razao_social" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email"`
	CpfCnpj     string `json:"cpf_cnpj" validate:"required"`
}

// InvoiceResponse nota tal como está en notas_fiscais.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	EmpresaID     string          `json:"empresa_id"`
	Numero        string          `json:"numero,omitempty"`
	StatusEmissao string          `json:"status_emissao"`
	DataEmissao   string          `json:"data_emissao,omitempty"`
	ValorTotal    decimal.Decimal `json:"valor_total" swaggertype:"string"`
	Descricao     string          `json:"descricao"`
	CodigoServico string          `json:"codigo_servico"`
	Tomador       TomadorRequest  `json:"tomador"`
	EnotasID      string          `json:"enotas_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// InvoiceSyncResponse resultado de sincronizar con el gateway.
type InvoiceSyncResponse struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unmatched int `json:"unmatched"`
}
