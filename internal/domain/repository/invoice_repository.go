package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para notas fiscales.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error)
	SetEnotasID(ctx context.Context, id, enotasID string) error
	// MarkIssued y MarkCancelled hacen un único UPDATE por id y devuelven la fila
	// resultante, o nil si ninguna fila coincidió.
	MarkIssued(ctx context.Context, in entity.InvoiceIssuance) (*entity.Invoice, error)
	MarkCancelled(ctx context.Context, id string) (*entity.Invoice, error)
}
