package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/catalog"
	"github.com/jhoicas/nfse-api/internal/application/company"
	"github.com/jhoicas/nfse-api/internal/application/customer"
	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/application/invoice"
	"github.com/jhoicas/nfse-api/internal/application/notification"
	"github.com/jhoicas/nfse-api/internal/application/webhook"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName    string
	Webhook        *webhook.Service
	WebhookToken   string
	CompanyUC      *company.UseCase
	CustomerUC     *customer.UseCase
	CatalogUC      *catalog.UseCase
	InvoiceUC      *invoice.UseCase
	NotificationUC *notification.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName})
	})

	// Webhook (público; el gateway no firma las llamadas)
	webhookHandler := NewWebhookHandler(deps.Webhook, deps.WebhookToken)
	app.Post(WebhookPath, webhookHandler.Receive)
	app.Post(WebhookFunctionPath, webhookHandler.Receive)

	// Dashboard (requiere Bearer Token de Supabase Auth)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	if deps.CompanyUC != nil {
		companyHandler := NewCompanyHandler(deps.CompanyUC)
		api.Post("/company", companyHandler.Register)
		api.Get("/company", companyHandler.Get)
		api.Post("/company/certificate", companyHandler.UploadCertificate)
		api.Get("/company/certificates", companyHandler.Certificates)
		api.Patch("/company/certificates/:id/revoke", companyHandler.RevokeCertificate)
		api.Get("/municipal-services", companyHandler.MunicipalServices)
	}

	if deps.CustomerUC != nil {
		customers := api.Group("/customers")
		customerHandler := NewCustomerHandler(deps.CustomerUC)
		customers.Post("/", customerHandler.Create)
		customers.Get("/", customerHandler.List)
		customers.Delete("/:id", customerHandler.Delete)
	}

	if deps.CatalogUC != nil {
		services := api.Group("/services")
		serviceHandler := NewServiceHandler(deps.CatalogUC)
		services.Post("/", serviceHandler.Create)
		services.Get("/", serviceHandler.List)
		services.Put("/:id", serviceHandler.Update)
		services.Delete("/:id", serviceHandler.Delete)
		api.Get("/service-types", serviceHandler.Types)
		api.Get("/service-categories", serviceHandler.Categories)
	}

	if deps.InvoiceUC != nil {
		invoices := api.Group("/invoices")
		invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
		invoices.Post("/", invoiceHandler.Issue)
		invoices.Get("/", invoiceHandler.List)
		invoices.Post("/sync", invoiceHandler.Sync)
		invoices.Get("/:id", invoiceHandler.GetByID)
		invoices.Get("/:id/pdf", invoiceHandler.PDF)
	}

	if deps.NotificationUC != nil {
		notifications := api.Group("/notifications")
		notificationHandler := NewNotificationHandler(deps.NotificationUC)
		notifications.Get("/", notificationHandler.ListUnread)
		notifications.Patch("/:id/read", notificationHandler.MarkAsRead)
	}
}
