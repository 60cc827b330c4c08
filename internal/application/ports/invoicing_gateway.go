package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Tipo de documento que emite el gateway para servicios.
const InvoiceKindNFSe = "NFS-e"

// Estados de nota en el gateway que tienen equivalente en status_emissao.
const (
	GatewayInvoiceAuthorized = "Autorizada"
	GatewayInvoiceCancelled  = "Cancelada"
)

// InvoicingGateway puerto de salida hacia el gateway de NFS-e (eNotas).
// El gateway es la fuente de verdad del número y del estado de cada nota;
// los cambios asíncronos llegan por el webhook.
type InvoicingGateway interface {
	RegisterCompany(ctx context.Context, company GatewayCompany) (*GatewayCompany, error)
	ListCompanies(ctx context.Context) ([]GatewayCompany, error)
	UploadCertificate(ctx context.Context, enotasID string, cert CertificateUpload) error
	ConfigureWebhook(ctx context.Context, enotasID, url string, events []string) (*WebhookSubscription, error)
	ListMunicipalServices(ctx context.Context, uf, cidade string) ([]MunicipalService, error)
	IssueInvoice(ctx context.Context, enotasID string, req GatewayInvoiceRequest) (*GatewayInvoice, error)
	ListInvoices(ctx context.Context, enotasID string) ([]GatewayInvoice, error)
}

// GatewayAddress endereço de la empresa emisora.
type GatewayAddress struct {
	CEP              string
	Logradouro       string
	Numero           string
	Complemento      string
	Bairro           string
	Cidade           string
	UF               string
	CodigoIbgeUf     int
	CodigoIbgeCidade int
}

// GatewayCompany empresa tal como la registra el gateway. ID vacío hasta que se registra.
type GatewayCompany struct {
	ID                 string
	RazaoSocial        string
	NomeFantasia       string
	CNPJ               string
	InscricaoMunicipal string
	Email              string
	Telefone           string
	Endereco           GatewayAddress
}

// CertificateUpload certificado A1 (.pfx) y su contraseña.
type CertificateUpload struct {
	FileName string
	Data     []byte
	Password string
}

// WebhookSubscription suscripción creada en el gateway.
type WebhookSubscription struct {
	ID      string
	URL     string
	Eventos []string
}

// MunicipalService ítem de la lista de servicios del municipio.
type MunicipalService struct {
	Codigo    string
	Descricao string
	Aliquota  decimal.Decimal
}

// GatewayInvoiceRequest solicitud de emisión. IDExterno es el id de la fila en notas_fiscais
// y vuelve en el webhook como notaFiscal.id.
type GatewayInvoiceRequest struct {
	Tipo          string
	IDExterno     string
	ValorTotal    decimal.Decimal
	Descricao     string
	CodigoServico string
	Tomador       GatewayTomador
}

// GatewayTomador cliente de la nota.
type GatewayTomador struct {
	RazaoSocial string
	Email       string
	CpfCnpj     string
}

// GatewayInvoice nota según el gateway.
type GatewayInvoice struct {
	ID          string
	IDExterno   string
	Numero      string
	Status      string
	DataEmissao string
	ValorTotal  decimal.Decimal
}
