package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
)

func TestValidate_CamposAnidados(t *testing.T) {
	err := dto.Validate(dto.RegisterCompanyRequest{CNPJ: "11222333000181", Email: "no-es-email"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "email: email")
	assert.Contains(t, err.Error(), "razaosocial: required")
	assert.Contains(t, err.Error(), "endereco.uf: required")
}

func TestValidate_Valido(t *testing.T) {
	in := dto.TomadorRequest{RazaoSocial: "Cliente", Email: "c@example.com", CpfCnpj: "52998224725"}
	assert.NoError(t, dto.Validate(in))
}

func TestPageRequest_DefaultPage(t *testing.T) {
	p := dto.PageRequest{Limit: 500, Offset: -3}
	p.DefaultPage()
	assert.Equal(t, dto.MaxPageLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = dto.PageRequest{}
	p.DefaultPage()
	assert.Equal(t, dto.DefaultPageLimit, p.Limit)
}
