package pdf_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/infrastructure/pdf"
)

func TestInvoiceSummary_GeneraPDF(t *testing.T) {
	company := &entity.Company{CNPJ: "11222333000181", RazaoSocial: "Acme Serviços LTDA", RegistrationStatus: entity.CompanyStatusActive}
	invoice := &entity.Invoice{
		Numero: "1001", EmissionStatus: entity.InvoiceStatusIssued, DataEmissao: "2024-03-10T14:00:00Z",
		ValorTotal: decimal.RequireFromString("1500.00"), Descricao: "Consultoria em TI", CodigoServico: "1.05",
		Tomador: entity.Tomador{RazaoSocial: "Cliente", CpfCnpj: "52998224725", Email: "c@example.com"},
	}

	out, err := pdf.NewMarotoPDFGenerator().InvoiceSummary(company, invoice)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestInvoiceSummary_SinDatos(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().InvoiceSummary(nil, &entity.Invoice{})
	assert.Error(t, err)
}

func TestFormatos(t *testing.T) {
	assert.Equal(t, "R$ 1.234,50", pdf.FormatBRL(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "R$ 0,50", pdf.FormatBRL(decimal.RequireFromString("0.5")))
	assert.Equal(t, "R$ 1.000.000,00", pdf.FormatBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "11.222.333/0001-81", pdf.FormatCNPJ("11222333000181"))
	assert.Equal(t, "10/03/2024", pdf.FormatEmissionDate("2024-03-10T14:00:00Z"))
	assert.Equal(t, "10/03/2024", pdf.FormatEmissionDate("2024-03-10"))
	assert.Equal(t, "ontem", pdf.FormatEmissionDate("ontem"))
}
