package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-api/internal/application/dto"
)

// BodyLimit tamaño máximo del cuerpo de cualquier request.
const BodyLimit = 1 << 20

// Rutas del webhook de eNotas; sus errores usan el formato dto.WebhookResponse.
const (
	WebhookPath         = "/webhooks/enotas"
	WebhookFunctionPath = "/functions/v1/webhook-enotas"
)

// NewServer crea la app Fiber con recover, log de requests y errores en formato
// dto.ErrorResponse, salvo en las rutas del webhook (dto.WebhookResponse).
func NewServer(appName string, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		BodyLimit:             BodyLimit,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if isWebhookPath(c.Path()) {
				return c.Status(code).JSON(dto.WebhookResponse{Success: false, Error: err.Error()})
			}
			return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(code), Message: err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(RequestLogger(log))
	return app
}

func isWebhookPath(path string) bool {
	path = strings.TrimSuffix(path, "/")
	return path == WebhookPath || path == WebhookFunctionPath
}

// RequestLogger registra método, ruta, status y latencia de cada request.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("http")
		return err
	}
}
