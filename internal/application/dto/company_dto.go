package dto

import "time"

// RegisterCompanyRequest body de alta de empresa (cadastro en eNotas).
type RegisterCompanyRequest struct {
	CNPJ               string          `json:"cnpj" validate:"required"`
	RazaoSocial        string          `json:"razao_social" validate:"required,max=255"`
	NomeFantasia       string          `json:"nome_fantasia" validate:"max=255"`
	InscricaoMunicipal string          `json:"inscricao_municipal" validate:"required"`
	Email              string          `json:"email" validate:"required,email"`
	Telefone           string          `json:"telefone"`
	Endereco           EnderecoRequest `json:"endereco"`
}

// EnderecoRequest endereço de la empresa; los códigos IBGE los usa el gateway para el municipio.
type EnderecoRequest struct {
	CEP              string `json:"cep" validate:"required"`
	Logradouro       string `json:"logradouro" validate:"required"`
	Numero           string `json:"numero" validate:"required"`
	Complemento      string `json:"complemento"`
	Bairro           string `json:"bairro" validate:"required"`
	Cidade           string `json:"cidade" validate:"required"`
	UF               string `json:"uf" validate:"required,len=2"`
	CodigoIbgeUf     int    `json:"codigo_ibge_uf"`
	CodigoIbgeCidade int    `json:"codigo_ibge_cidade"`
}

// CompanyResponse empresa del usuario. Los campos de estado salen de la tabla empresas;
// inscrição municipal, contacto y endereço se completan con el cadastro en eNotas.
type CompanyResponse struct {
	ID                 string           `json:"id"`
	CNPJ               string           `json:"cnpj"`
	RazaoSocial        string           `json:"razao_social"`
	NomeFantasia       string           `json:"nome_fantasia"`
	StatusCadastro     string           `json:"status_cadastro"`
	WebhookID          string           `json:"webhook_id,omitempty"`
	EnotasID           string           `json:"enotas_id,omitempty"`
	InscricaoMunicipal string           `json:"inscricao_municipal,omitempty"`
	Email              string           `json:"email,omitempty"`
	Telefone           string           `json:"telefone,omitempty"`
	Endereco           *EnderecoRequest `json:"endereco,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// BindCertificateInput archivo .pfx ya leído del multipart.
type BindCertificateInput struct {
	FileName string
	Data     []byte
	Password string
}

// CertificateResponse certificado registrado en certificados.
type CertificateResponse struct {
	ID              string    `json:"id"`
	Nome            string    `json:"nome"`
	Valido          bool      `json:"valido"`
	Titular         string    `json:"titular"`
	DataInicio      time.Time `json:"data_inicio"`
	DataValidade    time.Time `json:"data_validade"`
	DataUpload      time.Time `json:"data_upload"`
	NumeroDeSerie   string    `json:"numero_de_serie"`
	Tipo            string    `json:"tipo"`
	Status          string    `json:"status"`
	DiasParaExpirar int       `json:"dias_para_expirar"`
}

// MunicipalServiceResponse servicio de la lista municipal.
type MunicipalServiceResponse struct {
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
	Aliquota  string `json:"aliquota"`
}
