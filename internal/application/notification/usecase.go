package notification

import (
	"context"
	"fmt"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

// UseCase lectura de las notificaciones que escribe el webhook.
type UseCase struct {
	repo repository.NotificationRepository
}

func NewUseCase(repo repository.NotificationRepository) *UseCase {
	return &UseCase{repo: repo}
}

// ListUnread notificaciones no leídas del usuario, más recientes primero.
func (uc *UseCase) ListUnread(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	list, err := uc.repo.ListUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listar notificaciones: %w", err)
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.NotificationResponse{
			ID: n.ID, Message: n.Message, Type: n.Type, Read: n.Read, CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}

// MarkAsRead marca una notificación del usuario; domain.ErrNotFound si no es suya.
func (uc *UseCase) MarkAsRead(ctx context.Context, userID, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id es requerido", domain.ErrInvalidInput)
	}
	return uc.repo.MarkAsRead(ctx, userID, id)
}
