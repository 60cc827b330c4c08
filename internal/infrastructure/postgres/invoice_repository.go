package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre notas_fiscais.
type InvoiceRepo struct {
	q Querier
}

func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, empresa_id, COALESCE(numero, ''), status_emissao, COALESCE(data_emissao, ''),
	valor_total, descricao, codigo_servico, tomador_razao_social, tomador_email, tomador_cpf_cnpj,
	COALESCE(enotas_id, ''), created_at, updated_at`

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	inv.CreatedAt, inv.UpdatedAt = now, now
	query := `
		INSERT INTO notas_fiscais (id, empresa_id, numero, status_emissao, data_emissao, valor_total, descricao,
			codigo_servico, tomador_razao_social, tomador_email, tomador_cpf_cnpj, enotas_id, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.Numero, inv.EmissionStatus, inv.DataEmissao, inv.ValorTotal, inv.Descricao,
		inv.CodigoServico, inv.Tomador.RazaoSocial, inv.Tomador.Email, inv.Tomador.CpfCnpj, inv.EnotasID,
		inv.CreatedAt, inv.UpdatedAt,
	)
	return wrapErr(ctx, "insert nota fiscal", err)
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	row := r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM notas_fiscais WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, "get nota fiscal", err)
	}
	return inv, nil
}

// ListByCompany más recientes primero.
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM notas_fiscais
		WHERE empresa_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, wrapErr(ctx, "list notas fiscais", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, wrapErr(ctx, "scan nota fiscal", err)
		}
		list = append(list, inv)
	}
	return list, wrapErr(ctx, "list notas fiscais", rows.Err())
}

func (r *InvoiceRepo) SetEnotasID(ctx context.Context, id, enotasID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE notas_fiscais SET enotas_id = $2, updated_at = now() WHERE id = $1`, id, enotasID)
	if err != nil {
		return wrapErr(ctx, "update nota fiscal", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkIssued un único UPDATE ... RETURNING; nil si el id no existe.
func (r *InvoiceRepo) MarkIssued(ctx context.Context, in entity.InvoiceIssuance) (*entity.Invoice, error) {
	query := `
		UPDATE notas_fiscais
		SET status_emissao = $2, numero = NULLIF($3, ''), data_emissao = NULLIF($4, ''), updated_at = now()
		WHERE id = $1
		RETURNING ` + invoiceColumns
	return r.updateOne(ctx, query, in.InvoiceID, entity.InvoiceStatusIssued, in.Numero, in.DataEmissao)
}

// MarkCancelled solo cambia el estado; numero y data_emissao se conservan.
func (r *InvoiceRepo) MarkCancelled(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `
		UPDATE notas_fiscais SET status_emissao = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + invoiceColumns
	return r.updateOne(ctx, query, id, entity.InvoiceStatusCancelled)
}

func (r *InvoiceRepo) updateOne(ctx context.Context, query string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, "update nota fiscal", err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.Numero, &inv.EmissionStatus, &inv.DataEmissao,
		&inv.ValorTotal, &inv.Descricao, &inv.CodigoServico,
		&inv.Tomador.RazaoSocial, &inv.Tomador.Email, &inv.Tomador.CpfCnpj,
		&inv.EnotasID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
