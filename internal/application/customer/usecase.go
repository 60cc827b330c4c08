// Package customer administra los tomadores frecuentes del usuario.
package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
	"github.com/jhoicas/nfse-api/pkg/nfse"
)

// UseCase casos de uso para tomadores.
type UseCase struct {
	repo repository.CustomerRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.CustomerRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Create guarda un tomador. CPF/CNPJ se normaliza a dígitos y se valida;
// repetido para el mismo usuario → domain.ErrDuplicate.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	doc := nfse.OnlyDigits(in.CpfCnpj)
	if err := nfse.ValidateCpfCnpj(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	existing, err := uc.repo.GetByUserAndDocument(ctx, userID, doc)
	if err != nil {
		return nil, fmt.Errorf("buscar tomador: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: tomador %s ya registrado", domain.ErrDuplicate, doc)
	}

	e := in.Endereco
	c := &entity.Customer{
		UserID:      userID,
		RazaoSocial: strings.TrimSpace(in.RazaoSocial),
		CpfCnpj:     doc,
		Email:       strings.TrimSpace(in.Email),
		Telefone:    nfse.OnlyDigits(in.Telefone),
		Endereco: entity.Address{
			CEP:         nfse.OnlyDigits(e.CEP),
			Logradouro:  strings.TrimSpace(e.Logradouro),
			Numero:      strings.TrimSpace(e.Numero),
			Complemento: strings.TrimSpace(e.Complemento),
			Bairro:      strings.TrimSpace(e.Bairro),
			Cidade:      strings.TrimSpace(e.Cidade),
			UF:          strings.ToUpper(e.UF),
		},
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("guardar tomador: %w", err)
	}
	return toResponse(c), nil
}

// List tomadores del usuario ordenados por razão social.
func (uc *UseCase) List(ctx context.Context, userID string, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByUser(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar tomadores: %w", err)
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toResponse(c))
	}
	return &dto.CustomerListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Delete borra un tomador del usuario (domain.ErrNotFound si no es suyo).
func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	return uc.repo.Delete(ctx, userID, id)
}

func toResponse(c *entity.Customer) *dto.CustomerResponse {
	e := c.Endereco
	return &dto.CustomerResponse{
		ID:          c.ID,
		RazaoSocial: c.RazaoSocial,
		CpfCnpj:     c.CpfCnpj,
		Email:       c.Email,
		Telefone:    c.Telefone,
		Endereco: dto.CustomerAddressRequest{
			CEP: e.CEP, Logradouro: e.Logradouro, Numero: e.Numero, Complemento: e.Complemento,
			Bairro: e.Bairro, Cidade: e.Cidade, UF: e.UF,
		},
		CreatedAt: c.CreatedAt,
	}
}
