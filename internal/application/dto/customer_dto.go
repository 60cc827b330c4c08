package dto

import "time"

// CreateCustomerRequest body de alta de tomador.
type CreateCustomerRequest struct {
	RazaoSocial string                 `json:"razao_social" validate:"required,max=255"`
	CpfCnpj     string                 `json:"cpf_cnpj" validate:"required"`
	Email       string                 `json:"email" validate:"required,email"`
	Telefone    string                 `json:"telefone"`
	Endereco    CustomerAddressRequest `json:"endereco"`
}

// CustomerAddressRequest endereço del tomador.
type CustomerAddressRequest struct {
	CEP         string `json:"cep" validate:"required"`
	Logradouro  string `json:"logradouro" validate:"required"`
	Numero      string `json:"numero" validate:"required"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro" validate:"required"`
	Cidade      string `json:"cidade" validate:"required"`
	UF          string `json:"uf" validate:"required,len=2"`
}

// CustomerResponse tomador tal como está en tomadores.
type CustomerResponse struct {
	ID          string                 `json:"id"`
	RazaoSocial string                 `json:"razao_social"`
	CpfCnpj     string                 `json:"cpf_cnpj"`
	Email       string                 `json:"email"`
	Telefone    string                 `json:"telefone"`
	Endereco    CustomerAddressRequest `json:"endereco"`
	CreatedAt   time.Time              `json:"created_at"`
}

// CustomerListResponse listado paginado de tomadores.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
