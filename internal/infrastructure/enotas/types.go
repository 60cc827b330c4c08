package enotas

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nfse-api/internal/application/ports"
)

// ── Estructuras del protocolo REST de eNotas ─────────────────────────────────

type addressWire struct {
	CEP              string `json:"cep"`
	Logradouro       string `json:"logradouro"`
	Numero           string `json:"numero"`
	Complemento      string `json:"complemento,omitempty"`
	Bairro           string `json:"bairro"`
	Cidade           string `json:"cidade"`
	UF               string `json:"uf"`
	CodigoIbgeUf     int    `json:"codigoIbgeUf,omitempty"`
	CodigoIbgeCidade int    `json:"codigoIbgeCidade,omitempty"`
}

type companyWire struct {
	ID                 string      `json:"id,omitempty"`
	EmpresaID          string      `json:"empresaId,omitempty"`
	RazaoSocial        string      `json:"razaoSocial"`
	NomeFantasia       string      `json:"nomeFantasia"`
	CNPJ               string      `json:"cnpj"`
	InscricaoMunicipal string      `json:"inscricaoMunicipal"`
	Email              string      `json:"email"`
	Telefone           string      `json:"telefone"`
	Endereco           addressWire `json:"endereco"`
}

// identifier eNotas responde el alta como {"empresaId": ...} y los listados con "id".
func (w companyWire) identifier() string {
	if w.EmpresaID != "" {
		return w.EmpresaID
	}
	return w.ID
}

func (w companyWire) toPort() ports.GatewayCompany {
	return ports.GatewayCompany{
		ID:                 w.identifier(),
		RazaoSocial:        w.RazaoSocial,
		NomeFantasia:       w.NomeFantasia,
		CNPJ:               w.CNPJ,
		InscricaoMunicipal: w.InscricaoMunicipal,
		Email:              w.Email,
		Telefone:           w.Telefone,
		Endereco: ports.GatewayAddress{
			CEP:              w.Endereco.CEP,
			Logradouro:       w.Endereco.Logradouro,
			Numero:           w.Endereco.Numero,
			Complemento:      w.Endereco.Complemento,
			Bairro:           w.Endereco.Bairro,
			Cidade:           w.Endereco.Cidade,
			UF:               w.Endereco.UF,
			CodigoIbgeUf:     w.Endereco.CodigoIbgeUf,
			CodigoIbgeCidade: w.Endereco.CodigoIbgeCidade,
		},
	}
}

func toCompanyWire(c ports.GatewayCompany) companyWire {
	a := c.Endereco
	return companyWire{
		RazaoSocial:        c.RazaoSocial,
		NomeFantasia:       c.NomeFantasia,
		CNPJ:               c.CNPJ,
		InscricaoMunicipal: c.InscricaoMunicipal,
		Email:              c.Email,
		Telefone:           c.Telefone,
		Endereco: addressWire{
			CEP: a.CEP, Logradouro: a.Logradouro, Numero: a.Numero, Complemento: a.Complemento,
			Bairro: a.Bairro, Cidade: a.Cidade, UF: a.UF,
			CodigoIbgeUf: a.CodigoIbgeUf, CodigoIbgeCidade: a.CodigoIbgeCidade,
		},
	}
}

type webhookWire struct {
	ID      string   `json:"id,omitempty"`
	URL     string   `json:"url"`
	Eventos []string `json:"eventos"`
}

type serviceWire struct {
	Codigo    string          `json:"codigo"`
	Descricao string          `json:"descricao"`
	Aliquota  decimal.Decimal `json:"aliquota"`
}

type invoiceRequestWire struct {
	Tipo       string  `json:"tipo"`
	IDExterno  string  `json:"idExterno,omitempty"`
	ValorTotal float64 `json:"valorTotal"` // número JSON; decimal.Decimal se serializa entre comillas
	Servico    struct {
		Descricao     string `json:"descricao"`
		CodigoServico string `json:"codigoServico"`
	} `json:"servico"`
	Tomador struct {
		RazaoSocial string `json:"razaoSocial"`
		Email       string `json:"email"`
		CpfCnpj     string `json:"cpfCnpj"`
	} `json:"tomador"`
}

func toInvoiceRequestWire(r ports.GatewayInvoiceRequest) invoiceRequestWire {
	var w invoiceRequestWire
	w.Tipo = r.Tipo
	w.IDExterno = r.IDExterno
	w.ValorTotal = r.ValorTotal.Round(2).InexactFloat64()
	w.Servico.Descricao = r.Descricao
	w.Servico.CodigoServico = r.CodigoServico
	w.Tomador.RazaoSocial = r.Tomador.RazaoSocial
	w.Tomador.Email = r.Tomador.Email
	w.Tomador.CpfCnpj = r.Tomador.CpfCnpj
	return w
}

type invoiceWire struct {
	ID          string          `json:"id,omitempty"`
	NfeID       string          `json:"nfeId,omitempty"`
	IDExterno   string          `json:"idExterno,omitempty"`
	Numero      string          `json:"numero,omitempty"`
	Status      string          `json:"status,omitempty"`
	DataEmissao string          `json:"dataEmissao,omitempty"`
	ValorTotal  decimal.Decimal `json:"valorTotal"`
}

func (w invoiceWire) toPort() ports.GatewayInvoice {
	id := w.NfeID
	if id == "" {
		id = w.ID
	}
	return ports.GatewayInvoice{
		ID:          id,
		IDExterno:   w.IDExterno,
		Numero:      w.Numero,
		Status:      w.Status,
		DataEmissao: w.DataEmissao,
		ValorTotal:  w.ValorTotal,
	}
}

type apiErrorWire struct {
	Codigo   string `json:"codigo"`
	Mensagem string `json:"mensagem"`
}

func (e apiErrorWire) String() string {
	if e.Codigo == "" {
		return e.Mensagem
	}
	return e.Codigo + ": " + e.Mensagem
}
