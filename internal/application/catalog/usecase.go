// Package catalog administra el catálogo de servicios del usuario y sus
// tablas de apoyo (tipos y categorías).
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

// UseCase casos de uso del catálogo.
type UseCase struct {
	repo repository.ServiceRepository
}

func NewUseCase(repo repository.ServiceRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Create da de alta un servicio en estado ativo.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := uc.validate(ctx, userID, in); err != nil {
		return nil, err
	}
	svc := &entity.Service{UserID: userID, Status: entity.ServiceStatusActive}
	apply(svc, in)
	if err := uc.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("guardar servicio: %w", err)
	}
	return toResponse(svc), nil
}

// Update reescribe el servicio. Status vacío conserva el actual.
func (uc *UseCase) Update(ctx context.Context, userID, id string, in dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := uc.validate(ctx, userID, in); err != nil {
		return nil, err
	}
	svc, err := uc.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("buscar servicio: %w", err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	apply(svc, in)
	if in.Status != "" {
		svc.Status = in.Status
	}
	updated, err := uc.repo.Update(ctx, svc)
	if err != nil {
		return nil, fmt.Errorf("actualizar servicio: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(updated), nil
}

// List servicios del usuario, más recientes primero.
func (uc *UseCase) List(ctx context.Context, userID string) ([]dto.ServiceResponse, error) {
	list, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listar servicios: %w", err)
	}
	out := make([]dto.ServiceResponse, 0, len(list))
	for _, svc := range list {
		out = append(out, *toResponse(svc))
	}
	return out, nil
}

func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	return uc.repo.Delete(ctx, userID, id)
}

func (uc *UseCase) ListTypes(ctx context.Context, userID string) ([]dto.ServiceLookupResponse, error) {
	list, err := uc.repo.ListTypes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listar tipos de servicio: %w", err)
	}
	return toLookups(list), nil
}

func (uc *UseCase) ListCategories(ctx context.Context, userID string) ([]dto.ServiceLookupResponse, error) {
	list, err := uc.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listar categorías de servicio: %w", err)
	}
	return toLookups(list), nil
}

// validate aplica las etiquetas del DTO, exige valor >= 0, prazo_entrega >= prazo_inicio
// y que tipo y categoría, si vienen, sean del usuario.
func (uc *UseCase) validate(ctx context.Context, userID string, in dto.ServiceRequest) error {
	if err := dto.Validate(in); err != nil {
		return err
	}
	if in.Valor.IsNegative() {
		return fmt.Errorf("%w: valor no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.PrazoEntrega < in.PrazoInicio {
		return fmt.Errorf("%w: prazo_entrega menor que prazo_inicio", domain.ErrInvalidInput)
	}
	if in.TipoServicoID != "" {
		types, err := uc.repo.ListTypes(ctx, userID)
		if err != nil {
			return fmt.Errorf("listar tipos de servicio: %w", err)
		}
		if !containsID(types, in.TipoServicoID) {
			return fmt.Errorf("%w: tipo_servico_id %s desconocido", domain.ErrInvalidInput, in.TipoServicoID)
		}
	}
	if in.CategoriaServicoID != "" {
		cats, err := uc.repo.ListCategories(ctx, userID)
		if err != nil {
			return fmt.Errorf("listar categorías de servicio: %w", err)
		}
		if !containsID(cats, in.CategoriaServicoID) {
			return fmt.Errorf("%w: categoria_servico_id %s desconocida", domain.ErrInvalidInput, in.CategoriaServicoID)
		}
	}
	return nil
}

func apply(svc *entity.Service, in dto.ServiceRequest) {
	svc.Nome = strings.TrimSpace(in.Nome)
	svc.TipoServicoID = in.TipoServicoID
	svc.CategoriaServicoID = in.CategoriaServicoID
	svc.PrazoInicio = in.PrazoInicio
	svc.PrazoEntrega = in.PrazoEntrega
	svc.Valor = in.Valor.Round(2)
	svc.Descricao = strings.TrimSpace(in.Descricao)
}

func containsID(list []*entity.ServiceLookup, id string) bool {
	for _, l := range list {
		if l.ID == id {
			return true
		}
	}
	return false
}

func toResponse(svc *entity.Service) *dto.ServiceResponse {
	return &dto.ServiceResponse{
		ID:                 svc.ID,
		Nome:               svc.Nome,
		TipoServicoID:      svc.TipoServicoID,
		CategoriaServicoID: svc.CategoriaServicoID,
		PrazoInicio:        svc.PrazoInicio,
		PrazoEntrega:       svc.PrazoEntrega,
		Valor:              svc.Valor,
		Descricao:          svc.Descricao,
		Status:             svc.Status,
		CreatedAt:          svc.CreatedAt,
		UpdatedAt:          svc.UpdatedAt,
	}
}

func toLookups(list []*entity.ServiceLookup) []dto.ServiceLookupResponse {
	out := make([]dto.ServiceLookupResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.ServiceLookupResponse{ID: l.ID, Nome: l.Nome, Descricao: l.Descricao})
	}
	return out
}
