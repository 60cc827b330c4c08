package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/rs/zerolog"

	_ "github.com/jhoicas/nfse-api/docs"
	"github.com/jhoicas/nfse-api/internal/application/catalog"
	"github.com/jhoicas/nfse-api/internal/application/company"
	"github.com/jhoicas/nfse-api/internal/application/customer"
	"github.com/jhoicas/nfse-api/internal/application/invoice"
	"github.com/jhoicas/nfse-api/internal/application/notification"
	"github.com/jhoicas/nfse-api/internal/application/webhook"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
	"github.com/jhoicas/nfse-api/internal/infrastructure/certificate"
	"github.com/jhoicas/nfse-api/internal/infrastructure/enotas"
	"github.com/jhoicas/nfse-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/nfse-api/internal/infrastructure/pdf"
	"github.com/jhoicas/nfse-api/internal/infrastructure/postgres"
	"github.com/jhoicas/nfse-api/internal/infrastructure/supabase"
	httpRouter "github.com/jhoicas/nfse-api/internal/interfaces/http"
	"github.com/jhoicas/nfse-api/pkg/config"
	"github.com/jhoicas/nfse-api/pkg/logger"
	"github.com/jhoicas/nfse-api/pkg/retry"
)

// @title                       NFS-e API
// @version                     1.0
// @description                 Webhook de eNotas y API del dashboard de emisión de NFS-e.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store).
		Msg("iniciando aplicación")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}

	ctx := context.Background()
	repos, closeStore, err := openStore(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer closeStore()

	storeRetry := retry.Config{
		MaxAttempts: cfg.Webhook.RetryMaxAttempts,
		BaseDelay:   cfg.Webhook.RetryBaseDelay,
	}
	webhookSvc := webhook.NewService(repos.Deps, webhook.Options{
		Retry:        storeRetry,
		RequireMatch: cfg.Webhook.RequireMatch,
		NotifyUsers:  cfg.Webhook.NotifyUsers,
		SaveEventLog: cfg.Webhook.SaveEventLog,
	}, log.Zerolog())

	gateway := enotas.NewClient(cfg.Enotas.APIURL, cfg.Enotas.APIKey, log.Zerolog())
	if cfg.Enotas.APIKey == "" {
		log.Warn().Msg("ENOTAS_API_KEY vacío: cadastro y emisión responderán error de gateway")
	}
	if cfg.Supabase.JWTSecret == "" {
		log.Warn().Msg("SUPABASE_JWT_SECRET vacío: las rutas /api rechazarán todos los tokens")
	}

	companyUC := company.NewUseCase(repos.Companies, repos.Certificates, gateway, certificate.NewInspector(), webhookURL(cfg), log.Zerolog())
	invoiceUC := invoice.NewUseCase(repos.Companies, repos.Invoices, gateway, infrapdf.NewMarotoPDFGenerator(), log.Zerolog()).
		WithRetry(storeRetry)
	customerUC := customer.NewUseCase(repos.Customers)
	catalogUC := catalog.NewUseCase(repos.Services)
	notificationUC := notification.NewUseCase(repos.Notifications)

	app := httpRouter.NewServer(cfg.App.Name, log.Component("http"))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "NFS-e API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:    cfg.App.Name,
		Webhook:        webhookSvc,
		WebhookToken:   cfg.Enotas.WebhookToken,
		CompanyUC:      companyUC,
		CustomerUC:     customerUC,
		CatalogUC:      catalogUC,
		InvoiceUC:      invoiceUC,
		NotificationUC: notificationUC,
		JWTSecret:      cfg.Supabase.JWTSecret,
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// stores repositorios del driver configurado: los del webhook más los del dashboard.
type stores struct {
	webhook.Deps
	Customers    repository.CustomerRepository
	Services     repository.ServiceRepository
	Certificates repository.CertificateRepository
}

// openStore construye los repositorios del driver configurado.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (stores, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return stores{}, nil, err
		}
		if cfg.App.Env == "development" {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return stores{}, nil, err
			}
		}
		return stores{
			Deps: webhook.Deps{
				Companies:     postgres.NewCompanyRepository(pool),
				Invoices:      postgres.NewInvoiceRepository(pool),
				Notifications: postgres.NewNotificationRepository(pool),
				WebhookLogs:   postgres.NewWebhookLogRepository(pool),
			},
			Customers:    postgres.NewCustomerRepository(pool),
			Services:     postgres.NewServiceRepository(pool),
			Certificates: postgres.NewCertificateRepository(pool),
		}, pool.Close, nil

	case config.StoreMemory:
		log.Warn().Msg("store en memoria: nada persiste entre reinicios")
		st := memory.NewStore()
		return stores{
			Deps: webhook.Deps{
				Companies:     st.Companies(),
				Invoices:      st.Invoices(),
				Notifications: st.Notifications(),
				WebhookLogs:   st.WebhookLogs(),
			},
			Customers:    st.Customers(),
			Services:     st.Services(),
			Certificates: st.Certificates(),
		}, func() {}, nil

	default:
		client := supabase.NewClient(cfg.Supabase.RESTURL(), cfg.Supabase.ServiceRoleKey, log)
		return stores{
			Deps: webhook.Deps{
				Companies:     supabase.NewCompanyRepository(client),
				Invoices:      supabase.NewInvoiceRepository(client),
				Notifications: supabase.NewNotificationRepository(client),
				WebhookLogs:   supabase.NewWebhookLogRepository(client),
			},
			Customers:    supabase.NewCustomerRepository(client),
			Services:     supabase.NewServiceRepository(client),
			Certificates: supabase.NewCertificateRepository(client),
		}, func() {}, nil
	}
}

// webhookURL URL que se registra en eNotas; con token se agrega a la query.
func webhookURL(cfg *config.Config) string {
	raw := cfg.Enotas.WebhookURL
	if raw == "" || cfg.Enotas.WebhookToken == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("token", cfg.Enotas.WebhookToken)
	u.RawQuery = q.Encode()
	return u.String()
}
