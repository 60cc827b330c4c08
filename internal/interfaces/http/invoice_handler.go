package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/application/invoice"
)

// InvoiceHandler emisión y consulta de NFS-e (protegido).
type InvoiceHandler struct {
	uc *invoice.UseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *invoice.UseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Issue godoc
// @Summary      Emitir NFS-e
// @Description  Guarda la nota en pendente y la envía a eNotas; número y fecha llegan por webhook.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.IssueInvoiceRequest  true  "Nota"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Issue(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar notas de la empresa
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), userID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una nota
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la nota"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Espelho de la nota en PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la nota"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	data, filename, err := h.uc.SummaryPDF(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(data)
}

// Sync godoc
// @Summary      Sincronizar notas con eNotas
// @Description  Aplica Autorizada/Cancelada de eNotas a las notas que no recibieron webhook.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.InvoiceSyncResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/invoices/sync [post]
func (h *InvoiceHandler) Sync(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Sync(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
