package repository

import (
	"context"

	"github.com/jhoicas/nfse-api/internal/domain/entity"
)

// WebhookLogRepository puerto para la auditoría de eventos recibidos.
type WebhookLogRepository interface {
	Create(ctx context.Context, log *entity.WebhookLog) error
}
