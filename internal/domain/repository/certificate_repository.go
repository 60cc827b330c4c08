package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// CertificateRepository puerto de persistencia para certificados.
type CertificateRepository interface {
	Create(ctx context.Context, cert *entity.Certificate) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Certificate, error)
	// Revoke marca valido=false, status=REVOGADO y devuelve la fila, o nil si no coincidió.
	Revoke(ctx context.Context, companyID, id string) (*entity.Certificate, error)
}
