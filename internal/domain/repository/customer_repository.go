package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// CustomerRepository puerto de persistencia para tomadores.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByUserAndDocument(ctx context.Context, userID, cpfCnpj string) (*entity.Customer, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Customer, error)
	// Delete devuelve domain.ErrNotFound si el tomador no existe o es de otro usuario.
	Delete(ctx context.Context, userID, id string) error
}
