package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/application/webhook"
	"github.com/jhoicas/nfse-api/internal/domain"
)

func TestValidate_EventoValido(t *testing.T) {
	v := webhook.NewValidator()
	ev, err := v.Validate([]byte(`{"evento":"NotaFiscalEmitida","id":"e1","data":{"notaFiscal":{"id":"n1","numero":"7"}}}`))

	require.NoError(t, err)
	assert.Equal(t, webhook.EventInvoiceIssued, ev.Evento)
	assert.Equal(t, "e1", ev.ID)
	require.NotNil(t, ev.Data.NotaFiscal)
	assert.Equal(t, "7", ev.Data.NotaFiscal.Numero)
}

func TestValidate_CamposObligatorios(t *testing.T) {
	v := webhook.NewValidator()
	_, err := v.Validate([]byte(`{"evento":"EmpresaCadastrada"}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "id")
	assert.Contains(t, err.Error(), "data")
}

func TestValidate_NoObjeto(t *testing.T) {
	v := webhook.NewValidator()
	for _, body := range []string{`null`, `[1,2]`, `42`, `  `} {
		_, err := v.Validate([]byte(body))
		assert.ErrorIs(t, err, domain.ErrValidation, body)
		assert.NotErrorIs(t, err, domain.ErrUnsupportedEvent, body)
	}
}

func TestValidate_TipoIncorrecto(t *testing.T) {
	v := webhook.NewValidator()
	_, err := v.Validate([]byte(`{"evento":"EmpresaCadastrada","id":123,"data":{}}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidate_EventoDesconocido(t *testing.T) {
	v := webhook.NewValidator()
	_, err := v.Validate([]byte(`{"evento":"Outro","id":"e1","data":{}}`))

	var unsupported *domain.UnsupportedEventError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Outro", unsupported.Kind)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
