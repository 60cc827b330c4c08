package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

var _ repository.WebhookLogRepository = (*WebhookLogRepo)(nil)

type WebhookLogRepo struct {
	q Querier
}

func NewWebhookLogRepository(q Querier) *WebhookLogRepo {
	return &WebhookLogRepo{q: q}
}

func (r *WebhookLogRepo) Create(ctx context.Context, l *entity.WebhookLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now().UTC()
	var details any
	if len(l.Details) > 0 {
		details = string(l.Details)
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO webhook_logs (id, event, status, details, created_at) VALUES ($1, $2, $3, $4::jsonb, $5)`,
		l.ID, l.Event, l.Status, details, l.CreatedAt,
	)
	return wrapErr(ctx, "insert webhook log", err)
}
