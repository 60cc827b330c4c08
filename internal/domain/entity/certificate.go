package entity

import "time"

// Estados de un certificado registrado (columna status).
const (
	CertificateStatusActive  = "ATIVO"
	CertificateStatusExpired = "EXPIRADO"
	CertificateStatusRevoked = "REVOGADO"
)

// CertificateKindA1 único tipo que acepta el upload (archivo .pfx).
const CertificateKindA1 = "A1"

// Certificate registro de un certificado digital enviado al gateway (tabla certificados).
// El .pfx y su contraseña no se guardan.
type Certificate struct {
	ID            string
	CompanyID     string
	Nome          string // nombre del archivo subido
	Valido        bool
	Titular       string
	NumeroDeSerie string
	DataInicio    time.Time
	DataValidade  time.Time
	DataUpload    time.Time
	Tipo          string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectiveStatus devuelve EXPIRADO si un certificado ATIVO ya venció en now.
func (c *Certificate) EffectiveStatus(now time.Time) string {
	if c.Status == CertificateStatusActive && now.After(c.DataValidade) {
		return CertificateStatusExpired
	}
	return c.Status
}
