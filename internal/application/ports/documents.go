package ports

import (
	"time"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// CertificateInfo datos del certificado A1 leídos del PKCS#12.
type CertificateInfo struct {
	Subject      string
	Issuer       string
	SerialNumber string
	NotBefore    time.Time
	NotAfter     time.Time
}

// Expired informa si el certificado ya no es válido en el instante now.
func (c *CertificateInfo) Expired(now time.Time) bool {
	return now.After(c.NotAfter)
}

// CertificateInspector abre un .pfx con su contraseña sin guardarlo.
type CertificateInspector interface {
	Inspect(data []byte, password string) (*CertificateInfo, error)
}

// InvoicePDFGenerator genera el espelho (resumen) de una NFS-e.
type InvoicePDFGenerator interface {
	InvoiceSummary(company *entity.Company, invoice *entity.Invoice) ([]byte, error)
}
