// Lectura del certificado A1 (.pfx / PKCS#12) antes de enviarlo al gateway.

package certificate

import (
	"crypto/x509"
	"errors"
	"fmt"

	"golang.org/x/crypto/pkcs12"

	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/domain"
)

var _ ports.CertificateInspector = (*Inspector)(nil)

// Inspector abre el PKCS#12 en memoria; no guarda ni el archivo ni la llave.
type Inspector struct{}

func NewInspector() *Inspector { return &Inspector{} }

// Inspect decodifica data con password y devuelve los datos del certificado hoja.
// Contraseña incorrecta o archivo corrupto devuelven domain.ErrInvalidInput.
func (i *Inspector) Inspect(data []byte, password string) (*ports.CertificateInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: certificado vacío", domain.ErrInvalidInput)
	}
	cert, err := leafCertificate(data, password)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, fmt.Errorf("%w: senha do certificado incorreta", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: decodificar p12: %v", domain.ErrInvalidInput, err)
	}
	return &ports.CertificateInfo{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.Text(16),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
	}, nil
}

// leafCertificate usa Decode y, si el .pfx trae la cadena completa (ICP-Brasil suele
// incluirla), recorre los bloques PEM y toma el primer certificado que no es CA.
func leafCertificate(data []byte, password string) (*x509.Certificate, error) {
	_, cert, err := pkcs12.Decode(data, password)
	if err == nil {
		return cert, nil
	}
	if errors.Is(err, pkcs12.ErrIncorrectPassword) {
		return nil, err
	}
	blocks, pemErr := pkcs12.ToPEM(data, password)
	if pemErr != nil {
		return nil, pemErr
	}
	var first *x509.Certificate
	for _, b := range blocks {
		if b.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(b.Bytes)
		if err != nil {
			continue
		}
		if !c.IsCA {
			return c, nil
		}
		if first == nil {
			first = c
		}
	}
	if first == nil {
		return nil, fmt.Errorf("p12 sin certificados")
	}
	return first, nil
}
