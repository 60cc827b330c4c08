package customer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/application/customer"
	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/infrastructure/memory"
)

func validRequest() dto.CreateCustomerRequest {
	return dto.CreateCustomerRequest{
		RazaoSocial: " Cliente SA ",
		CpfCnpj:     "529.982.247-25",
		Email:       "c@example.com",
		Telefone:    "(19) 3333-4444",
		Endereco: dto.CustomerAddressRequest{
			CEP: "13010-000", Logradouro: "Rua A", Numero: "10", Bairro: "Centro", Cidade: "Campinas", UF: "sp",
		},
	}
}

func TestCreate_NormalizaDocumentoYEndereco(t *testing.T) {
	store := memory.NewStore()
	uc := customer.NewUseCase(store.Customers())

	out, err := uc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "52998224725", out.CpfCnpj)
	assert.Equal(t, "Cliente SA", out.RazaoSocial)
	assert.Equal(t, "1933334444", out.Telefone)
	assert.Equal(t, "13010000", out.Endereco.CEP)
	assert.Equal(t, "SP", out.Endereco.UF)
}

func TestCreate_DuplicadoPorUsuario(t *testing.T) {
	uc := customer.NewUseCase(memory.NewStore().Customers())
	_, err := uc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), "user-1", validRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(context.Background(), "user-2", validRequest())
	assert.NoError(t, err, "otro usuario puede tener el mismo tomador")
}

func TestCreate_EntradaInvalida(t *testing.T) {
	uc := customer.NewUseCase(memory.NewStore().Customers())

	in := validRequest()
	in.CpfCnpj = "111.111.111-11"
	_, err := uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = validRequest()
	in.Endereco.UF = "SPX"
	_, err = uc.Create(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListYDelete(t *testing.T) {
	uc := customer.NewUseCase(memory.NewStore().Customers())
	created, err := uc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)

	out, err := uc.List(context.Background(), "user-1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, dto.DefaultPageLimit, out.Page.Limit)

	assert.ErrorIs(t, uc.Delete(context.Background(), "user-2", created.ID), domain.ErrNotFound)
	require.NoError(t, uc.Delete(context.Background(), "user-1", created.ID))

	out, err = uc.List(context.Background(), "user-1", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}
