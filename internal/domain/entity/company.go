package entity

import "time"

// Estados de cadastro de la empresa en el gateway eNotas (columna status_cadastro).
const (
	CompanyStatusPending = "pendente"
	CompanyStatusActive  = "ativo"
	CompanyStatusError   = "erro"
)

// Company representa una empresa emisora de NFS-e (tabla empresas).
// Un usuario del dashboard tiene como máximo una empresa.
type Company struct {
	ID                 string
	UserID             string
	CNPJ               string // solo dígitos
	RazaoSocial        string
	NomeFantasia       string
	RegistrationStatus string // pendente, ativo, erro
	WebhookID          string // id del evento EmpresaCadastrada o de la suscripción del webhook
	EnotasID           string // id de la empresa en eNotas
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsActive informa si el gateway ya habilitó la empresa para emitir.
func (c *Company) IsActive() bool {
	return c != nil && c.RegistrationStatus == CompanyStatusActive
}

// CompanyRegistration campos que escribe el evento EmpresaCadastrada.
type CompanyRegistration struct {
	CNPJ               string
	RegistrationStatus string
	WebhookID          string
	EnotasID           string
}
