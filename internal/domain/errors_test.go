package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nfse-api/internal/domain"
)

func TestErrores_IsContraSentinelas(t *testing.T) {
	assert.ErrorIs(t, &domain.ValidationError{Reason: "x"}, domain.ErrValidation)
	assert.ErrorIs(t, &domain.MissingFieldError{Field: "data.empresa"}, domain.ErrMissingField)
	assert.ErrorIs(t, &domain.ConfigurationError{Keys: []string{"SUPABASE_URL"}}, domain.ErrConfiguration)

	unsupported := &domain.UnsupportedEventError{Kind: "Otro"}
	assert.ErrorIs(t, unsupported, domain.ErrUnsupportedEvent)
	assert.ErrorIs(t, unsupported, domain.ErrValidation, "un tipo desconocido también es falla de validación")
	assert.Equal(t, "Evento não suportado: Otro", unsupported.Error())
}

func TestTransientStoreError_EnvuelveCausa(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("update empresa: %w", &domain.TransientStoreError{Op: "PATCH empresas", Err: cause})

	assert.ErrorIs(t, err, domain.ErrTransientStore)
	assert.ErrorIs(t, err, cause)

	var tse *domain.TransientStoreError
	assert.True(t, errors.As(err, &tse))
	assert.Equal(t, "PATCH empresas", tse.Op)
}

func TestMissingFieldError_Mensaje(t *testing.T) {
	err := &domain.MissingFieldError{Field: "data.notaFiscal"}
	assert.Contains(t, err.Error(), "data.notaFiscal")
	assert.NotErrorIs(t, err, domain.ErrValidation)
}
