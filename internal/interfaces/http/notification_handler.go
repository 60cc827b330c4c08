package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/notification"
)

// NotificationHandler avisos generados por el webhook.
type NotificationHandler struct {
	uc *notification.UseCase
}

func NewNotificationHandler(uc *notification.UseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// ListUnread godoc
// @Summary      Notificaciones no leídas
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListUnread(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ListUnread(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkAsRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la notificación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	if err := h.uc.MarkAsRead(c.UserContext(), userID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
