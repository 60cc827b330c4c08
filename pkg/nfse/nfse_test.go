package nfse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nfse-api/pkg/nfse"
)

func TestValidateCNPJ(t *testing.T) {
	assert.NoError(t, nfse.ValidateCNPJ("11222333000181"))
	assert.NoError(t, nfse.ValidateCNPJ("11.222.333/0001-81"), "la máscara se ignora")
	assert.NoError(t, nfse.ValidateCNPJ("12345678000195"))

	assert.Error(t, nfse.ValidateCNPJ("12345678000190"), "verificador incorrecto")
	assert.Error(t, nfse.ValidateCNPJ("1122233300018"), "13 dígitos")
	assert.Error(t, nfse.ValidateCNPJ("00000000000000"), "dígitos repetidos")
}

func TestComputeCNPJCheckDigits(t *testing.T) {
	dv, err := nfse.ComputeCNPJCheckDigits("112223330001")
	assert.NoError(t, err)
	assert.Equal(t, "81", dv)

	_, err = nfse.ComputeCNPJCheckDigits("123")
	assert.Error(t, err)
}

func TestValidateCPF(t *testing.T) {
	assert.NoError(t, nfse.ValidateCPF("529.982.247-25"))
	assert.Error(t, nfse.ValidateCPF("529.982.247-26"))
	assert.Error(t, nfse.ValidateCPF("111.111.111-11"))
}

func TestValidateCpfCnpj(t *testing.T) {
	assert.NoError(t, nfse.ValidateCpfCnpj("52998224725"))
	assert.NoError(t, nfse.ValidateCpfCnpj("11222333000181"))
	assert.Error(t, nfse.ValidateCpfCnpj("123"))
}

func TestFoldASCIIYSafeFileName(t *testing.T) {
	assert.Equal(t, "Servicos de Informatica", nfse.FoldASCII("Serviços de Informática"))
	assert.Equal(t, "NFS-e-Joao-Acougue.pdf", nfse.SafeFileName("NFS-e João / Açougue.pdf"))
	assert.Equal(t, "arquivo", nfse.SafeFileName("  ///  "))
}
