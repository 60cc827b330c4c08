package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

type NotificationRepo struct {
	q Querier
}

func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	_, err := r.q.Exec(ctx,
		`INSERT INTO notifications (id, user_id, message, type, read, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Message, n.Type, n.Read, n.CreatedAt,
	)
	return wrapErr(ctx, "insert notification", err)
}

func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, message, type, read, created_at
		FROM notifications WHERE user_id = $1 AND NOT read
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrapErr(ctx, "list notifications", err)
	}
	defer rows.Close()

	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, wrapErr(ctx, "scan notification", err)
		}
		list = append(list, &n)
	}
	return list, wrapErr(ctx, "list notifications", rows.Err())
}

func (r *NotificationRepo) MarkAsRead(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapErr(ctx, "update notification", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
