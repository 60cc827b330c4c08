package supabase

import (
	"context"
	"encoding/json"
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
	tableCompanies     = "empresas"
	tableInvoices      = "notas_fiscais"
	tableNotifications = "notifications"
	tableWebhookLogs   = "webhook_logs"
)

// ── Empresas ─────────────────────────────────────────────────────────────────

var _ repository.CompanyRepository = (*CompanyRepository)(nil)

// CompanyRepository implementa repository.CompanyRepository sobre la tabla empresas.
type CompanyRepository struct {
	c *Client
}

func NewCompanyRepository(c *Client) *CompanyRepository { return &CompanyRepository{c: c} }

type companyRow struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CNPJ           string    `json:"cnpj"`
	RazaoSocial    string    `json:"razao_social"`
	NomeFantasia   string    `json:"nome_fantasia"`
	StatusCadastro string    `json:"status_cadastro"`
	WebhookID      string    `json:"webhook_id,omitempty"`
	EnotasID       string    `json:"enotas_id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

func (r companyRow) toEntity() *entity.Company {
	return &entity.Company{
		ID: r.ID, UserID: r.UserID, CNPJ: r.CNPJ, RazaoSocial: r.RazaoSocial, NomeFantasia: r.NomeFantasia,
		RegistrationStatus: r.StatusCadastro, WebhookID: r.WebhookID, EnotasID: r.EnotasID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	row := companyRow{
		ID: company.ID, UserID: company.UserID, CNPJ: company.CNPJ,
		RazaoSocial: company.RazaoSocial, NomeFantasia: company.NomeFantasia,
		StatusCadastro: company.RegistrationStatus, WebhookID: company.WebhookID, EnotasID: company.EnotasID,
		CreatedAt: now, UpdatedAt: now,
	}
	var out []companyRow
	if err := r.c.insert(ctx, tableCompanies, row, &out); err != nil {
		return err
	}
	if got := first(out); got != nil {
		company.CreatedAt, company.UpdatedAt = got.CreatedAt, got.UpdatedAt
	} else {
		company.CreatedAt, company.UpdatedAt = now, now
	}
	return nil
}

func (r *CompanyRepository) GetByUserID(ctx context.Context, userID string) (*entity.Company, error) {
	return r.getOne(ctx, "user_id", userID)
}

func (r *CompanyRepository) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	return r.getOne(ctx, "cnpj", cnpj)
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return r.getOne(ctx, "id", id)
}

// ApplyRegistration PATCH empresas?cnpj=eq.X: un único UPDATE.
func (r *CompanyRepository) ApplyRegistration(ctx context.Context, reg entity.CompanyRegistration) (*entity.Company, error) {
	var out []companyRow
	err := r.c.update(ctx, tableCompanies, url.Values{"cnpj": {eq(reg.CNPJ)}}, map[string]any{
		"status_cadastro": reg.RegistrationStatus,
		"webhook_id":      reg.WebhookID,
		"enotas_id":       reg.EnotasID,
		"updated_at":      time.Now().UTC(),
	}, &out)
	if err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

func (r *CompanyRepository) getOne(ctx context.Context, column, value string) (*entity.Company, error) {
	var out []companyRow
	if err := r.c.selectRows(ctx, tableCompanies, url.Values{column: {eq(value)}, "limit": {"1"}}, &out); err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

// ── Notas fiscais ────────────────────────────────────────────────────────────

var _ repository.InvoiceRepository = (*InvoiceRepository)(nil)

// InvoiceRepository implementa repository.InvoiceRepository sobre notas_fiscais.
type InvoiceRepository struct {
	c *Client
}

func NewInvoiceRepository(c *Client) *InvoiceRepository { return &InvoiceRepository{c: c} }

type invoiceRow struct {
	ID                 string          `json:"id"`
	EmpresaID          string          `json:"empresa_id"`
	Numero             string          `json:"numero,omitempty"`
	StatusEmissao      string          `json:"status_emissao"`
	DataEmissao        string          `json:"data_emissao,omitempty"`
	ValorTotal         decimal.Decimal `json:"valor_total"`
	Descricao          string          `json:"descricao"`
	CodigoServico      string          `json:"codigo_servico"`
	TomadorRazaoSocial string          `json:"tomador_razao_social"`
	TomadorEmail       string          `json:"tomador_email"`
	TomadorCpfCnpj     string          `json:"tomador_cpf_cnpj"`
	EnotasID           string          `json:"enotas_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at,omitempty"`
}

func (r invoiceRow) toEntity() *entity.Invoice {
	return &entity.Invoice{
		ID: r.ID, CompanyID: r.EmpresaID, Numero: r.Numero, EmissionStatus: r.StatusEmissao,
		DataEmissao: r.DataEmissao, ValorTotal: r.ValorTotal, Descricao: r.Descricao, CodigoServico: r.CodigoServico,
		Tomador:  entity.Tomador{RazaoSocial: r.TomadorRazaoSocial, Email: r.TomadorEmail, CpfCnpj: r.TomadorCpfCnpj},
		EnotasID: r.EnotasID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	row := invoiceRow{
		ID: inv.ID, EmpresaID: inv.CompanyID, Numero: inv.Numero, StatusEmissao: inv.EmissionStatus,
		DataEmissao: inv.DataEmissao, ValorTotal: inv.ValorTotal, Descricao: inv.Descricao, CodigoServico: inv.CodigoServico,
		TomadorRazaoSocial: inv.Tomador.RazaoSocial, TomadorEmail: inv.Tomador.Email, TomadorCpfCnpj: inv.Tomador.CpfCnpj,
		EnotasID: inv.EnotasID, CreatedAt: now, UpdatedAt: now,
	}
	if err := r.c.insert(ctx, tableInvoices, row, nil); err != nil {
		return err
	}
	inv.CreatedAt, inv.UpdatedAt = now, now
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var out []invoiceRow
	if err := r.c.selectRows(ctx, tableInvoices, url.Values{"id": {eq(id)}, "limit": {"1"}}, &out); err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

func (r *InvoiceRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	q := url.Values{
		"empresa_id": {eq(companyID)},
		"order":      {"created_at.desc"},
		"limit":      {strconv.Itoa(limit)},
		"offset":     {strconv.Itoa(offset)},
	}
	var out []invoiceRow
	if err := r.c.selectRows(ctx, tableInvoices, q, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Invoice, 0, len(out))
	for _, row := range out {
		list = append(list, row.toEntity())
	}
	return list, nil
}

func (r *InvoiceRepository) SetEnotasID(ctx context.Context, id, enotasID string) error {
	row, err := r.patchByID(ctx, id, map[string]any{"enotas_id": enotasID})
	if err != nil {
		return err
	}
	if row == nil {
		return domain.ErrNotFound
	}
	return nil
}

// MarkIssued PATCH notas_fiscais?id=eq.X: un único UPDATE.
func (r *InvoiceRepository) MarkIssued(ctx context.Context, in entity.InvoiceIssuance) (*entity.Invoice, error) {
	return r.patchByID(ctx, in.InvoiceID, map[string]any{
		"status_emissao": entity.InvoiceStatusIssued,
		"numero":         in.Numero,
		"data_emissao":   in.DataEmissao,
	})
}

func (r *InvoiceRepository) MarkCancelled(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.patchByID(ctx, id, map[string]any{"status_emissao": entity.InvoiceStatusCancelled})
}

func (r *InvoiceRepository) patchByID(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error) {
	fields["updated_at"] = time.Now().UTC()
	var out []invoiceRow
	if err := r.c.update(ctx, tableInvoices, url.Values{"id": {eq(id)}}, fields, &out); err != nil {
		return nil, err
	}
	if row := first(out); row != nil {
		return row.toEntity(), nil
	}
	return nil, nil
}

// ── Notificaciones ───────────────────────────────────────────────────────────

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

type NotificationRepository struct {
	c *Client
}

func NewNotificationRepository(c *Client) *NotificationRepository {
	return &NotificationRepository{c: c}
}

type notificationRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	row := notificationRow{ID: n.ID, UserID: n.UserID, Message: n.Message, Type: n.Type, Read: n.Read, CreatedAt: n.CreatedAt}
	return r.c.insert(ctx, tableNotifications, row, nil)
}

func (r *NotificationRepository) ListUnread(ctx context.Context, userID string) ([]*entity.Notification, error) {
	q := url.Values{"user_id": {eq(userID)}, "read": {"eq.false"}, "order": {"created_at.desc"}}
	var out []notificationRow
	if err := r.c.selectRows(ctx, tableNotifications, q, &out); err != nil {
		return nil, err
	}
	list := make([]*entity.Notification, 0, len(out))
	for _, row := range out {
		list = append(list, &entity.Notification{
			ID: row.ID, UserID: row.UserID, Message: row.Message, Type: row.Type, Read: row.Read, CreatedAt: row.CreatedAt,
		})
	}
	return list, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, id string) error {
	var out []notificationRow
	q := url.Values{"id": {eq(id)}, "user_id": {eq(userID)}}
	if err := r.c.update(ctx, tableNotifications, q, map[string]any{"read": true}, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Webhook logs ─────────────────────────────────────────────────────────────

var _ repository.WebhookLogRepository = (*WebhookLogRepository)(nil)

type WebhookLogRepository struct {
	c *Client
}

func NewWebhookLogRepository(c *Client) *WebhookLogRepository { return &WebhookLogRepository{c: c} }

type webhookLogRow struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Status    string          `json:"status"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

func (r *WebhookLogRepository) Create(ctx context.Context, l *entity.WebhookLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now().UTC()
	return r.c.insert(ctx, tableWebhookLogs, webhookLogRow{
		ID: l.ID, Event: l.Event, Status: l.Status, Details: l.Details, CreatedAt: l.CreatedAt,
	}, nil)
}
