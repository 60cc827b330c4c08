package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Acepta pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, user_id, cnpj, razao_social, COALESCE(nome_fantasia, ''), status_cadastro,
	COALESCE(webhook_id, ''), COALESCE(enotas_id, ''), created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	company.CreatedAt, company.UpdatedAt = now, now
	query := `
		INSERT INTO empresas (id, user_id, cnpj, razao_social, nome_fantasia, status_cadastro, webhook_id, enotas_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.UserID, company.CNPJ, company.RazaoSocial, company.NomeFantasia,
		company.RegistrationStatus, company.WebhookID, company.EnotasID, company.CreatedAt, company.UpdatedAt,
	)
	return wrapErr(ctx, "insert empresa", err)
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return r.getOne(ctx, "get empresa", `SELECT `+companyColumns+` FROM empresas WHERE id = $1`, id)
}

func (r *CompanyRepo) GetByUserID(ctx context.Context, userID string) (*entity.Company, error) {
	return r.getOne(ctx, "get empresa by user", `SELECT `+companyColumns+` FROM empresas WHERE user_id = $1`, userID)
}

func (r *CompanyRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	return r.getOne(ctx, "get empresa by cnpj", `SELECT `+companyColumns+` FROM empresas WHERE cnpj = $1`, cnpj)
}

// ApplyRegistration un único UPDATE ... RETURNING; nil si el CNPJ no existe.
func (r *CompanyRepo) ApplyRegistration(ctx context.Context, reg entity.CompanyRegistration) (*entity.Company, error) {
	query := `
		UPDATE empresas
		SET status_cadastro = $2, webhook_id = NULLIF($3, ''), enotas_id = NULLIF($4, ''), updated_at = now()
		WHERE cnpj = $1
		RETURNING ` + companyColumns
	return r.getOne(ctx, "update empresa", query, reg.CNPJ, reg.RegistrationStatus, reg.WebhookID, reg.EnotasID)
}

func (r *CompanyRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Company, error) {
	var c entity.Company
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.UserID, &c.CNPJ, &c.RazaoSocial, &c.NomeFantasia, &c.RegistrationStatus,
		&c.WebhookID, &c.EnotasID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, op, err)
	}
	return &c, nil
}
