package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/application/webhook"
)

// WebhookHandler recibe las notificaciones de eNotas. No hay firma del gateway;
// el único control posible es el token compartido en la query.
type WebhookHandler struct {
	svc   *webhook.Service
	token string
}

// NewWebhookHandler token vacío desactiva la verificación de ?token=.
func NewWebhookHandler(svc *webhook.Service, token string) *WebhookHandler {
	return &WebhookHandler{svc: svc, token: token}
}

// Receive godoc
// @Summary      Webhook de eNotas
// @Description  Reconcilia EmpresaCadastrada, NotaFiscalEmitida y NotaFiscalCancelada con la base.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        token  query  string  false  "Token compartido (ENOTAS_WEBHOOK_TOKEN)"
// @Success      200  {object}  dto.WebhookResponse
// @Failure      400  {object}  dto.WebhookResponse
// @Failure      401  {object}  dto.WebhookResponse
// @Failure      500  {object}  dto.WebhookResponse
// @Router       /webhooks/enotas [post]
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	if h.token != "" && subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(h.token)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.WebhookResponse{Success: false, Error: "token inválido"})
	}
	// c.Body() solo es válido mientras dura el handler.
	body := append([]byte(nil), c.Body()...)

	res := h.svc.Handle(c.UserContext(), body)
	return c.Status(res.Status).JSON(dto.WebhookResponse{Success: res.Success, Error: res.Error})
}
