// Package pdf genera el espelho (resumen no fiscal) de una NFS-e emitida por el gateway.
// El documento fiscal válido es el que publica la prefeitura; este PDF es para el dashboard.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razão social + CNPJ  │  Nº NFS-e + data de emissão │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PRESTADOR: nome fantasia / status do cadastro              │
//	│  TOMADOR: razão social + CPF/CNPJ + email                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SERVIÇO: código | descrição                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VALOR TOTAL + status de emissão                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

var _ ports.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// InvoiceSummary genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) InvoiceSummary(company *entity.Company, invoice *entity.Invoice) ([]byte, error) {
	if company == nil || invoice == nil {
		return nil, fmt.Errorf("pdf: empresa y nota son requeridas")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Espelho NFS-e", true).
		WithAuthor(nonEmpty(company.RazaoSocial, company.CNPJ), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(prestadorRow(company))
	m.AddRows(tomadorRow(invoice.Tomador))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(servicoRows(invoice)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(invoice))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razão social + CNPJ (izq) y número + fecha (der).
func headerRow(invoice *entity.Invoice, company *entity.Company) core.Row {
	numero := "Aguardando emissão"
	if invoice.Numero != "" {
		numero = "Nº " + invoice.Numero
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company.RazaoSocial, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CNPJ: "+FormatCNPJ(company.CNPJ), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("NOTA FISCAL DE SERVIÇO ELETRÔNICA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emissão: "+FormatEmissionDate(invoice.DataEmissao), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func prestadorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("PRESTADOR DE SERVIÇOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Nome fantasia: %s   |   Cadastro eNotas: %s",
				nonEmpty(company.NomeFantasia, "-"),
				nonEmpty(company.RegistrationStatus, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tomadorRow(t entity.Tomador) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("TOMADOR DE SERVIÇOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(t.RazaoSocial, "-"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CPF/CNPJ: %s   |   Email: %s",
				nonEmpty(t.CpfCnpj, "-"),
				nonEmpty(t.Email, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// servicoRows: código de servicio municipal y descripción partida en líneas de 100 caracteres.
func servicoRows(invoice *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(8).Add(
			col.New(3).Add(text.New("Código do serviço", props.Text{Style: fontstyle.Bold, Size: 8, Top: 2})),
			col.New(9).Add(text.New("Discriminação", props.Text{Style: fontstyle.Bold, Size: 8, Top: 2})),
		),
	}
	lines := splitEvery(nonEmpty(invoice.Descricao, "-"), 100)
	for i, l := range lines {
		code := ""
		if i == 0 {
			code = nonEmpty(invoice.CodigoServico, "-")
		}
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(code, props.Text{Size: 8, Top: 1})),
			col.New(9).Add(text.New(l, props.Text{Size: 8, Top: 1})),
		))
	}
	return rows
}

func totalRow(invoice *entity.Invoice) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(text.New("VALOR TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(FormatBRL(invoice.ValorTotal), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRow(invoice *entity.Invoice) core.Row {
	status := strings.ToUpper(nonEmpty(invoice.EmissionStatus, entity.InvoiceStatusPending))
	color := colorGray
	if invoice.EmissionStatus == entity.InvoiceStatusCancelled {
		color = colorRed
	}
	return row.New(14).Add(col.New(12).Add(
		text.New("Status: "+status, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: color, Top: 1,
		}),
		text.New("Documento sem valor fiscal. Consulte a NFS-e no portal da prefeitura.", props.Text{
			Size: 6.5, Align: align.Center, Color: colorGray, Top: 7,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatBRL formatea en reales: 1234.5 → "R$ 1.234,50".
func FormatBRL(v decimal.Decimal) string {
	fixed := v.Abs().StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	sign := ""
	if v.IsNegative() {
		sign = "-"
	}
	return "R$ " + sign + thousands(intPart) + "," + frac
}

// FormatCNPJ aplica la máscara 00.000.000/0000-00; otros largos se devuelven tal cual.
func FormatCNPJ(cnpj string) string {
	if len(cnpj) != 14 {
		return nonEmpty(cnpj, "-")
	}
	return cnpj[:2] + "." + cnpj[2:5] + "." + cnpj[5:8] + "/" + cnpj[8:12] + "-" + cnpj[12:]
}

// FormatEmissionDate acepta RFC 3339 o YYYY-MM-DD y devuelve dd/mm/aaaa.
func FormatEmissionDate(s string) string {
	if s == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

// thousands inserta puntos de miles: "1000000" → "1.000.000".
func thousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// splitEvery divide s en trozos de max n runas.
func splitEvery(s string, n int) []string {
	r := []rune(s)
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
