package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepo)(nil)

// CertificateRepo registros de certificados vinculados (tabla certificados).
type CertificateRepo struct {
	q Querier
}

func NewCertificateRepository(q Querier) *CertificateRepo {
	return &CertificateRepo{q: q}
}

const certificateColumns = `id, empresa_id, nome, valido, titular, numero_de_serie,
	COALESCE(data_inicio, data_upload), data_validade, data_upload, tipo, status, created_at, updated_at`

func (r *CertificateRepo) Create(ctx context.Context, c *entity.Certificate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.DataUpload.IsZero() {
		c.DataUpload = now
	}
	var dataInicio *time.Time
	if !c.DataInicio.IsZero() {
		dataInicio = &c.DataInicio
	}
	query := `
		INSERT INTO certificados (id, empresa_id, nome, valido, titular, numero_de_serie,
			data_inicio, data_validade, data_upload, tipo, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyID, c.Nome, c.Valido, c.Titular, c.NumeroDeSerie,
		dataInicio, c.DataValidade, c.DataUpload, c.Tipo, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return wrapErr(ctx, "insert certificado", err)
}

func (r *CertificateRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificados WHERE empresa_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, wrapErr(ctx, "list certificados", err)
	}
	defer rows.Close()
	list := make([]*entity.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, wrapErr(ctx, "scan certificado", err)
		}
		list = append(list, c)
	}
	return list, wrapErr(ctx, "list certificados", rows.Err())
}

// Revoke un único UPDATE ... RETURNING; nil si el certificado no es de la empresa.
func (r *CertificateRepo) Revoke(ctx context.Context, companyID, id string) (*entity.Certificate, error) {
	query := `
		UPDATE certificados SET valido = false, status = $3, updated_at = now()
		WHERE id = $1 AND empresa_id = $2
		RETURNING ` + certificateColumns
	c, err := scanCertificate(r.q.QueryRow(ctx, query, id, companyID, entity.CertificateStatusRevoked))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, "revoke certificado", err)
	}
	return c, nil
}

func scanCertificate(row pgx.Row) (*entity.Certificate, error) {
	var c entity.Certificate
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Nome, &c.Valido, &c.Titular, &c.NumeroDeSerie,
		&c.DataInicio, &c.DataValidade, &c.DataUpload, &c.Tipo, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
