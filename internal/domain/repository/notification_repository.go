package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// NotificationRepository puerto de persistencia para notificaciones del usuario.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListUnread(ctx context.Context, userID string) ([]*entity.Notification, error)
	// MarkAsRead devuelve domain.ErrNotFound si la notificación no existe o es de otro usuario.
	MarkAsRead(ctx context.Context, userID, id string) error
}
