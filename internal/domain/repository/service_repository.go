package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// ServiceRepository puerto de persistencia del catálogo de servicios.
type ServiceRepository interface {
	Create(ctx context.Context, svc *entity.Service) error
	GetByID(ctx context.Context, userID, id string) (*entity.Service, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Service, error)
	// Update reescribe los campos editables y devuelve la fila, o nil si no coincidió.
	Update(ctx context.Context, svc *entity.Service) (*entity.Service, error)
	Delete(ctx context.Context, userID, id string) error
	ListTypes(ctx context.Context, userID string) ([]*entity.ServiceLookup, error)
	ListCategories(ctx context.Context, userID string) ([]*entity.ServiceLookup, error)
}
