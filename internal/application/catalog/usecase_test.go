package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/application/catalog"
	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/infrastructure/memory"
)

func newUseCase() (*catalog.UseCase, *memory.Store) {
	store := memory.NewStore()
	store.AddServiceType(entity.ServiceLookup{ID: "tipo-1", UserID: "user-1", Nome: "Consultoria"})
	store.AddServiceCategory(entity.ServiceLookup{ID: "cat-1", UserID: "user-1", Nome: "TI"})
	store.AddServiceCategory(entity.ServiceLookup{ID: "cat-2", UserID: "user-2", Nome: "Outra"})
	return catalog.NewUseCase(store.Services()), store
}

func validRequest() dto.ServiceRequest {
	return dto.ServiceRequest{
		Nome: "Auditoria", TipoServicoID: "tipo-1", CategoriaServicoID: "cat-1",
		PrazoInicio: 2, PrazoEntrega: 15, Valor: decimal.RequireFromString("1200.005"),
	}
}

func TestCreate_AtivoYRedondeado(t *testing.T) {
	uc, _ := newUseCase()

	out, err := uc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceStatusActive, out.Status)
	assert.True(t, out.Valor.Equal(decimal.RequireFromString("1200.01")))

	list, err := uc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newUseCase()

	in := validRequest()
	in.PrazoEntrega = 1
	_, err := uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "entrega antes del inicio")

	in = validRequest()
	in.Valor = decimal.RequireFromString("-1")
	_, err = uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = validRequest()
	in.CategoriaServicoID = "cat-2"
	_, err = uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "categoría de otro usuario")

	in = validRequest()
	in.Nome = ""
	_, err = uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_ConservaStatusSiNoViene(t *testing.T) {
	uc, _ := newUseCase()
	created, err := uc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)

	in := validRequest()
	in.Nome = "Auditoria fiscal"
	out, err := uc.Update(context.Background(), "user-1", created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Auditoria fiscal", out.Nome)
	assert.Equal(t, entity.ServiceStatusActive, out.Status)

	in.Status = entity.ServiceStatusInactive
	out, err = uc.Update(context.Background(), "user-1", created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceStatusInactive, out.Status)

	in.Status = "borrado"
	_, err = uc.Update(context.Background(), "user-1", created.ID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(context.Background(), "user-1", "no-existe", validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteYTablasDeApoyo(t *testing.T) {
	uc, _ := newUseCase()
	created, err := uc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(context.Background(), "user-2", created.ID), domain.ErrNotFound)
	require.NoError(t, uc.Delete(context.Background(), "user-1", created.ID))

	types, err := uc.ListTypes(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Consultoria", types[0].Nome)

	cats, err := uc.ListCategories(context.Background(), "user-2")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "cat-2", cats[0].ID)
}
