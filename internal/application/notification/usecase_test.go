package notification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/application/notification"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/infrastructure/memory"
)

func TestListUnreadYMarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Notifications()
	uc := notification.NewUseCase(repo)

	a := &entity.Notification{UserID: "u1", Message: "Cadastro aprovado", Type: entity.NotificationStatusChange}
	b := &entity.Notification{UserID: "u1", Message: "Nota emitida", Type: entity.NotificationStatusChange}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, &entity.Notification{UserID: "u2", Message: "otro"}))

	list, err := uc.ListUnread(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Nota emitida", list[0].Message, "más reciente primero")

	require.NoError(t, uc.MarkAsRead(ctx, "u1", a.ID))
	list, err = uc.ListUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkAsRead_Errores(t *testing.T) {
	uc := notification.NewUseCase(memory.NewStore().Notifications())
	assert.ErrorIs(t, uc.MarkAsRead(context.Background(), "u1", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.MarkAsRead(context.Background(), "u1", "x"), domain.ErrNotFound)
}
