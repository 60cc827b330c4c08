package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/catalog"
	"github.com/jhoicas/nfse-api/internal/application/dto"
)

// ServiceHandler catálogo de servicios del usuario con sus tipos y categorías (protegido).
type ServiceHandler struct {
	uc *catalog.UseCase
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc *catalog.UseCase) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

// Create godoc
// @Summary      Crear servicio
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ServiceRequest  true  "Servicio"
// @Success      201   {object}  dto.ServiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/services [post]
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	var in dto.ServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar servicios
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ServiceResponse
// @Router       /api/services [get]
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.List(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar servicio
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ID del servicio"
// @Param        body  body  dto.ServiceRequest  true  "Servicio"
// @Success      200   {object}  dto.ServiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/services/{id} [put]
func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	var in dto.ServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar servicio
// @Tags         services
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del servicio"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id} [delete]
func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Types godoc
// @Summary      Tipos de servicio del usuario
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ServiceLookupResponse
// @Router       /api/service-types [get]
func (h *ServiceHandler) Types(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ListTypes(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Categories godoc
// @Summary      Categorías de servicio del usuario
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ServiceLookupResponse
// @Router       /api/service-categories [get]
func (h *ServiceHandler) Categories(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ListCategories(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
