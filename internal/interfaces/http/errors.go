package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/domain"
)

// writeError traduce errores de dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrGateway):
		status, code = fiber.StatusBadGateway, "GATEWAY"
	case errors.Is(err, domain.ErrConfiguration):
		status, code = fiber.StatusServiceUnavailable, "CONFIGURATION"
	case errors.Is(err, domain.ErrTransientStore):
		status, code = fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// requireUser corta con 401 si el middleware no dejó user_id.
func requireUser(c *fiber.Ctx) (string, bool) {
	userID := GetUserID(c)
	if userID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		return "", false
	}
	return userID, true
}
