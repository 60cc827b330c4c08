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

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

// ServiceRepo catálogo de servicios (servicos, tipos_servico, categorias_servico).
type ServiceRepo struct {
	q Querier
}

func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

const serviceColumns = `id, user_id, nome, COALESCE(tipo_servico_id, ''), COALESCE(categoria_servico_id, ''),
	prazo_inicio, prazo_entrega, valor, COALESCE(descricao, ''), status, created_at, updated_at`

func (r *ServiceRepo) Create(ctx context.Context, svc *entity.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	svc.CreatedAt, svc.UpdatedAt = now, now
	query := `
		INSERT INTO servicos (id, user_id, nome, tipo_servico_id, categoria_servico_id,
			prazo_inicio, prazo_entrega, valor, descricao, status, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		svc.ID, svc.UserID, svc.Nome, svc.TipoServicoID, svc.CategoriaServicoID,
		svc.PrazoInicio, svc.PrazoEntrega, svc.Valor, svc.Descricao, svc.Status, svc.CreatedAt, svc.UpdatedAt,
	)
	return wrapErr(ctx, "insert servico", err)
}

func (r *ServiceRepo) GetByID(ctx context.Context, userID, id string) (*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM servicos WHERE id = $1 AND user_id = $2`
	svc, err := scanService(r.q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, "get servico", err)
	}
	return svc, nil
}

func (r *ServiceRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM servicos WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr(ctx, "list servicos", err)
	}
	defer rows.Close()
	list := make([]*entity.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, wrapErr(ctx, "scan servico", err)
		}
		list = append(list, svc)
	}
	return list, wrapErr(ctx, "list servicos", rows.Err())
}

// Update un único UPDATE ... RETURNING filtrado por id y user_id.
func (r *ServiceRepo) Update(ctx context.Context, svc *entity.Service) (*entity.Service, error) {
	query := `
		UPDATE servicos
		SET nome = $3, tipo_servico_id = NULLIF($4, ''), categoria_servico_id = NULLIF($5, ''),
			prazo_inicio = $6, prazo_entrega = $7, valor = $8, descricao = NULLIF($9, ''), status = $10,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + serviceColumns
	out, err := scanService(r.q.QueryRow(ctx, query,
		svc.ID, svc.UserID, svc.Nome, svc.TipoServicoID, svc.CategoriaServicoID,
		svc.PrazoInicio, svc.PrazoEntrega, svc.Valor, svc.Descricao, svc.Status,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(ctx, "update servico", err)
	}
	return out, nil
}

func (r *ServiceRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM servicos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapErr(ctx, "delete servico", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ServiceRepo) ListTypes(ctx context.Context, userID string) ([]*entity.ServiceLookup, error) {
	return r.lookups(ctx, "list tipos_servico",
		`SELECT id, user_id, nome, COALESCE(descricao, '') FROM tipos_servico WHERE user_id = $1 ORDER BY nome`, userID)
}

func (r *ServiceRepo) ListCategories(ctx context.Context, userID string) ([]*entity.ServiceLookup, error) {
	return r.lookups(ctx, "list categorias_servico",
		`SELECT id, user_id, nome, COALESCE(descricao, '') FROM categorias_servico WHERE user_id = $1 ORDER BY nome`, userID)
}

func (r *ServiceRepo) lookups(ctx context.Context, op, query, userID string) ([]*entity.ServiceLookup, error) {
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr(ctx, op, err)
	}
	defer rows.Close()
	list := make([]*entity.ServiceLookup, 0)
	for rows.Next() {
		var l entity.ServiceLookup
		if err := rows.Scan(&l.ID, &l.UserID, &l.Nome, &l.Descricao); err != nil {
			return nil, wrapErr(ctx, op, err)
		}
		list = append(list, &l)
	}
	return list, wrapErr(ctx, op, rows.Err())
}

func scanService(row pgx.Row) (*entity.Service, error) {
	var s entity.Service
	err := row.Scan(
		&s.ID, &s.UserID, &s.Nome, &s.TipoServicoID, &s.CategoriaServicoID,
		&s.PrazoInicio, &s.PrazoEntrega, &s.Valor, &s.Descricao, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
