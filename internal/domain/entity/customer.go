package entity

import "time"

// Customer tomador habitual del usuario (tabla tomadores). Se usa para
// completar el bloque tomador al emitir una nota.
type Customer struct {
	ID          string
	UserID      string
	RazaoSocial string
	CpfCnpj     string // solo dígitos
	Email       string
	Telefone    string
	Endereco    Address
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Address endereço plano tal como lo guarda tomadores.
type Address struct {
	CEP         string
	Logradouro  string
	Numero      string
	Complemento string
	Bairro      string
	Cidade      string
	UF          string
}
