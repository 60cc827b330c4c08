package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para empresas (DIP).
// Las implementaciones viven en infrastructure (PostgREST o pgx).
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByUserID(ctx context.Context, userID string) (*entity.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error)
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	// ApplyRegistration hace un único UPDATE filtrado por CNPJ y devuelve la fila
	// resultante, o nil si ninguna fila coincidió.
	ApplyRegistration(ctx context.Context, reg entity.CompanyRegistration) (*entity.Company, error)
}
