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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre la tabla tomadores.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, user_id, razao_social, cpf_cnpj, email, telefone,
	cep, logradouro, numero, complemento, bairro, cidade, uf, created_at, updated_at`

// Create persiste un nuevo tomador. (user_id, cpf_cnpj) repetido → domain.ErrDuplicate.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	e := c.Endereco
	query := `
		INSERT INTO tomadores (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.UserID, c.RazaoSocial, c.CpfCnpj, c.Email, c.Telefone,
		e.CEP, e.Logradouro, e.Numero, e.Complemento, e.Bairro, e.Cidade, e.UF,
		c.CreatedAt, c.UpdatedAt,
	)
	return wrapErr(ctx, "insert tomador", err)
}

// GetByUserAndDocument obtiene un tomador por usuario y CPF/CNPJ.
func (r *CustomerRepo) GetByUserAndDocument(ctx context.Context, userID, cpfCnpj string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM tomadores WHERE user_id = $1 AND cpf_cnpj = $2`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, userID, cpfCnpj))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, "get tomador by documento", err)
	}
	return c, nil
}

// ListByUser lista tomadores del usuario con paginación.
func (r *CustomerRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM tomadores WHERE user_id = $1 ORDER BY razao_social, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, wrapErr(ctx, "list tomadores", err)
	}
	defer rows.Close()
	list := make([]*entity.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, wrapErr(ctx, "scan tomador", err)
		}
		list = append(list, c)
	}
	return list, wrapErr(ctx, "list tomadores", rows.Err())
}

// Delete elimina un tomador del usuario.
func (r *CustomerRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tomadores WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapErr(ctx, "delete tomador", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	e := &c.Endereco
	err := row.Scan(
		&c.ID, &c.UserID, &c.RazaoSocial, &c.CpfCnpj, &c.Email, &c.Telefone,
		&e.CEP, &e.Logradouro, &e.Numero, &e.Complemento, &e.Bairro, &e.Cidade, &e.UF,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
