package supabase

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

const (
	tableCustomers         = "tomadores"
	tableServices          = "servicos"
	tableServiceTypes      = "tipos_servico"
	tableServiceCategories = "categorias_servico"
	tableCertificates      = "certificados"
)

// ── Tomadores ────────────────────────────────────────────────────────────────

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

type CustomerRepository struct {
	c *Client
}

func NewCustomerRepository(c *Client) *CustomerRepository { return &CustomerRepository{c: c} }

type customerRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	RazaoSocial string    `json:"razao_social"`
	CpfCnpj     string    `json:"cpf_cnpj"`
	Email       string    `json:"email"`
	Telefone    string    `json:"telefone"`
	CEP         string    `json:"cep"`
	Logradouro  string    `json:"logradouro"`
	Numero      string    `json:"numero"`
	Complemento string    `json:"complemento"`
	Bairro      string    `json:"bairro"`
	Cidade      string    `json:"cidade"`
	UF          string    `json:"uf"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

func (r customerRow) toEntity() *entity.Customer {
	return &entity.Customer{
		ID: r.ID, UserID: r.UserID, RazaoSocial: r.RazaoSocial, CpfCnpj: r.CpfCnpj,
		Email: r.Email, Telefone: r.Telefone,
		Endereco: entity.Address{
			CEP: r.CEP, Logradouro: r.Logradouro, Numero: r.Numero, Complemento: r.Complemento,
			Bairro: r.Bairro, Cidade: r.Cidade, UF: r.UF,
		},
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e := c.Endereco
	row := customerRow{
		ID: c.ID, UserID: c.UserID, RazaoSocial: c.RazaoSocial, CpfCnpj: c.CpfCnpj, Email: c.Email, Telefone: c.Telefone,
		CEP: e.CEP, Logradouro: e.Logradouro, Numero: e.Numero, Complemento: e.Complemento,
		Bairro: e.Bairro, Cidade: e.Cidade, UF: e.UF,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := r.c.insert(ctx, tableCustomers, row, nil); err != nil {
		return err
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (r *CustomerRepository) GetByUserAndDocument(ctx context.Context, userID, cpfCnpj string) (*entity.Customer, error) {
	var out []customerRow
	q := url.Values{"user_id": {eq(userID)}, "cpf_cnpj": {eq(cpfCnpj)}, "limit": {"1"}}
	if err := r.c.selectRows(ctx, tableCustomers, q, &out); err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

func (r *CustomerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Customer, error) {
	q := url.Values{
		"user_id": {eq(userID)},
		"order":   {"razao_social.asc"},
		"limit":   {strconv.Itoa(limit)},
		"offset":  {strconv.Itoa(offset)},
	}
	var out []customerRow
	if err := r.c.selectRows(ctx, tableCustomers, q, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Customer, 0, len(out))
	for _, row := range out {
		list = append(list, row.toEntity())
	}
	return list, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, userID, id string) error {
	var out []customerRow
	if err := r.c.remove(ctx, tableCustomers, url.Values{"id": {eq(id)}, "user_id": {eq(userID)}}, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Catálogo de servicios ────────────────────────────────────────────────────

var _ repository.ServiceRepository = (*ServiceRepository)(nil)

type ServiceRepository struct {
	c *Client
}

func NewServiceRepository(c *Client) *ServiceRepository { return &ServiceRepository{c: c} }

type serviceRow struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	Nome               string          `json:"nome"`
	TipoServicoID      *string         `json:"tipo_servico_id"`
	CategoriaServicoID *string         `json:"categoria_servico_id"`
	PrazoInicio        int             `json:"prazo_inicio"`
	PrazoEntrega       int             `json:"prazo_entrega"`
	Valor              decimal.Decimal `json:"valor"`
	Descricao          string          `json:"descricao"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at,omitempty"`
}

func (r serviceRow) toEntity() *entity.Service {
	return &entity.Service{
		ID: r.ID, UserID: r.UserID, Nome: r.Nome,
		TipoServicoID: deref(r.TipoServicoID), CategoriaServicoID: deref(r.CategoriaServicoID),
		PrazoInicio: r.PrazoInicio, PrazoEntrega: r.PrazoEntrega, Valor: r.Valor,
		Descricao: r.Descricao, Status: r.Status, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type lookupRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

func (r *ServiceRepository) Create(ctx context.Context, svc *entity.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	row := serviceRow{
		ID: svc.ID, UserID: svc.UserID, Nome: svc.Nome,
		TipoServicoID: nullable(svc.TipoServicoID), CategoriaServicoID: nullable(svc.CategoriaServicoID),
		PrazoInicio: svc.PrazoInicio, PrazoEntrega: svc.PrazoEntrega, Valor: svc.Valor,
		Descricao: svc.Descricao, Status: svc.Status, CreatedAt: now, UpdatedAt: now,
	}
	if err := r.c.insert(ctx, tableServices, row, nil); err != nil {
		return err
	}
	svc.CreatedAt, svc.UpdatedAt = now, now
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, userID, id string) (*entity.Service, error) {
	var out []serviceRow
	q := url.Values{"id": {eq(id)}, "user_id": {eq(userID)}, "limit": {"1"}}
	if err := r.c.selectRows(ctx, tableServices, q, &out); err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

func (r *ServiceRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Service, error) {
	var out []serviceRow
	q := url.Values{"user_id": {eq(userID)}, "order": {"created_at.desc"}}
	if err := r.c.selectRows(ctx, tableServices, q, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Service, 0, len(out))
	for _, row := range out {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// Update PATCH servicos?id=eq.X&user_id=eq.Y.
func (r *ServiceRepository) Update(ctx context.Context, svc *entity.Service) (*entity.Service, error) {
	var out []serviceRow
	q := url.Values{"id": {eq(svc.ID)}, "user_id": {eq(svc.UserID)}}
	err := r.c.update(ctx, tableServices, q, map[string]any{
		"nome":                 svc.Nome,
		"tipo_servico_id":      nullable(svc.TipoServicoID),
		"categoria_servico_id": nullable(svc.CategoriaServicoID),
		"prazo_inicio":         svc.PrazoInicio,
		"prazo_entrega":        svc.PrazoEntrega,
		"valor":                svc.Valor,
		"descricao":            svc.Descricao,
		"status":               svc.Status,
		"updated_at":           time.Now().UTC(),
	}, &out)
	if err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

func (r *ServiceRepository) Delete(ctx context.Context, userID, id string) error {
	var out []serviceRow
	if err := r.c.remove(ctx, tableServices, url.Values{"id": {eq(id)}, "user_id": {eq(userID)}}, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) ListTypes(ctx context.Context, userID string) ([]*entity.ServiceLookup, error) {
	return r.lookups(ctx, tableServiceTypes, userID)
}

func (r *ServiceRepository) ListCategories(ctx context.Context, userID string) ([]*entity.ServiceLookup, error) {
	return r.lookups(ctx, tableServiceCategories, userID)
}

func (r *ServiceRepository) lookups(ctx context.Context, table, userID string) ([]*entity.ServiceLookup, error) {
	var out []lookupRow
	q := url.Values{"user_id": {eq(userID)}, "order": {"nome.asc"}}
	if err := r.c.selectRows(ctx, table, q, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.ServiceLookup, 0, len(out))
	for _, row := range out {
		list = append(list, &entity.ServiceLookup{ID: row.ID, UserID: row.UserID, Nome: row.Nome, Descricao: row.Descricao})
	}
	return list, nil
}

// ── Certificados ─────────────────────────────────────────────────────────────

var _ repository.CertificateRepository = (*CertificateRepository)(nil)

type CertificateRepository struct {
	c *Client
}

func NewCertificateRepository(c *Client) *CertificateRepository { return &CertificateRepository{c: c} }

type certificateRow struct {
	ID            string    `json:"id"`
	EmpresaID     string    `json:"empresa_id"`
	Nome          string    `json:"nome"`
	Valido        bool      `json:"valido"`
	Titular       string    `json:"titular"`
	NumeroDeSerie string    `json:"numero_de_serie"`
	DataInicio    time.Time `json:"data_inicio"`
	DataValidade  time.Time `json:"data_validade"`
	DataUpload    time.Time `json:"data_upload"`
	Tipo          string    `json:"tipo"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func (r certificateRow) toEntity() *entity.Certificate {
	return &entity.Certificate{
		ID: r.ID, CompanyID: r.EmpresaID, Nome: r.Nome, Valido: r.Valido, Titular: r.Titular,
		NumeroDeSerie: r.NumeroDeSerie, DataInicio: r.DataInicio, DataValidade: r.DataValidade,
		DataUpload: r.DataUpload, Tipo: r.Tipo, Status: r.Status, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r *CertificateRepository) Create(ctx context.Context, c *entity.Certificate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	row := certificateRow{
		ID: c.ID, EmpresaID: c.CompanyID, Nome: c.Nome, Valido: c.Valido, Titular: c.Titular,
		NumeroDeSerie: c.NumeroDeSerie, DataInicio: c.DataInicio, DataValidade: c.DataValidade,
		DataUpload: c.DataUpload, Tipo: c.Tipo, Status: c.Status, CreatedAt: now, UpdatedAt: now,
	}
	if err := r.c.insert(ctx, tableCertificates, row, nil); err != nil {
		return err
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (r *CertificateRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Certificate, error) {
	var out []certificateRow
	q := url.Values{"empresa_id": {eq(companyID)}, "order": {"created_at.desc"}}
	if err := r.c.selectRows(ctx, tableCertificates, q, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Certificate, 0, len(out))
	for _, row := range out {
		list = append(list, row.toEntity())
	}
	return list, nil
}

func (r *CertificateRepository) Revoke(ctx context.Context, companyID, id string) (*entity.Certificate, error) {
	var out []certificateRow
	q := url.Values{"id": {eq(id)}, "empresa_id": {eq(companyID)}}
	err := r.c.update(ctx, tableCertificates, q, map[string]any{
		"valido":     false,
		"status":     entity.CertificateStatusRevoked,
		"updated_at": time.Now().UTC(),
	}, &out)
	if err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

// nullable "" → null para las FK opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
