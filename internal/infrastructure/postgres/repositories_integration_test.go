//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/infrastructure/postgres"
)

// newTestPool levanta un PostgreSQL efímero con el esquema aplicado.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("nfse_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	require.NoError(t, postgres.EnsureSchema(ctx, pool), "el esquema debe ser idempotente")
	return pool
}

func TestRepositorios_FlujoCompleto(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	companies := postgres.NewCompanyRepository(pool)
	invoices := postgres.NewInvoiceRepository(pool)

	// ── Empresa ──
	company := &entity.Company{
		UserID: "user-1", CNPJ: "11222333000181", RazaoSocial: "Acme Serviços LTDA",
		RegistrationStatus: entity.CompanyStatusPending,
	}
	require.NoError(t, companies.Create(ctx, company))
	assert.NotEmpty(t, company.ID)

	err := companies.Create(ctx, &entity.Company{UserID: "user-2", CNPJ: "11222333000181"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := companies.ApplyRegistration(ctx, entity.CompanyRegistration{
		CNPJ: "11222333000181", RegistrationStatus: entity.CompanyStatusActive, WebhookID: "evt-1", EnotasID: "ent-1",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.CompanyStatusActive, got.RegistrationStatus)
	assert.Equal(t, "ent-1", got.EnotasID)
	assert.Empty(t, got.NomeFantasia)

	none, err := companies.ApplyRegistration(ctx, entity.CompanyRegistration{CNPJ: "99999999999999", RegistrationStatus: "ativo"})
	require.NoError(t, err)
	assert.Nil(t, none, "CNPJ inexistente: cero filas")

	byUser, err := companies.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, company.ID, byUser.ID)

	// ── Nota fiscal ──
	inv := &entity.Invoice{
		CompanyID: company.ID, EmissionStatus: entity.InvoiceStatusPending,
		ValorTotal: decimal.RequireFromString("1234.50"), Descricao: "Consultoria",
		Tomador: entity.Tomador{RazaoSocial: "Cliente", CpfCnpj: "52998224725"},
	}
	require.NoError(t, invoices.Create(ctx, inv))
	require.NoError(t, invoices.SetEnotasID(ctx, inv.ID, "nfe-1"))
	assert.ErrorIs(t, invoices.SetEnotasID(ctx, "no-existe", "x"), domain.ErrNotFound)

	issued, err := invoices.MarkIssued(ctx, entity.InvoiceIssuance{InvoiceID: inv.ID, Numero: "1001", DataEmissao: "2024-03-10"})
	require.NoError(t, err)
	require.NotNil(t, issued)
	assert.Equal(t, entity.InvoiceStatusIssued, issued.EmissionStatus)
	assert.Equal(t, "1001", issued.Numero)
	assert.True(t, issued.ValorTotal.Equal(decimal.RequireFromString("1234.5")))

	cancelled, err := invoices.MarkCancelled(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, cancelled.EmissionStatus)
	assert.Equal(t, "1001", cancelled.Numero, "cancelar conserva el número")

	missing, err := invoices.MarkCancelled(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := invoices.ListByCompany(ctx, company.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepositorios_NotificacionesYLogs(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	notifications := postgres.NewNotificationRepository(pool)
	n := &entity.Notification{UserID: "user-1", Message: "Nota fiscal 1001 emitida", Type: entity.NotificationSuccess}
	require.NoError(t, notifications.Create(ctx, n))

	unread, err := notifications.ListUnread(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, unread, 1)

	assert.ErrorIs(t, notifications.MarkAsRead(ctx, "user-2", n.ID), domain.ErrNotFound, "de otro usuario")
	require.NoError(t, notifications.MarkAsRead(ctx, "user-1", n.ID))

	unread, err = notifications.ListUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, unread)

	logs := postgres.NewWebhookLogRepository(pool)
	require.NoError(t, logs.Create(ctx, &entity.WebhookLog{
		Event: "NotaFiscalEmitida", Status: entity.WebhookLogSuccess, Details: json.RawMessage(`{"payload":{"id":"evt"}}`),
	}))
	require.NoError(t, logs.Create(ctx, &entity.WebhookLog{Event: "desconocido", Status: entity.WebhookLogError}))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM webhook_logs WHERE details IS NOT NULL`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRepositorios_CatalogoDelDashboard(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	// ── Tomadores ──
	customers := postgres.NewCustomerRepository(pool)
	c := &entity.Customer{
		UserID: "user-1", RazaoSocial: "Cliente SA", CpfCnpj: "52998224725",
		Endereco: entity.Address{CEP: "01001000", Cidade: "São Paulo", UF: "SP"},
	}
	require.NoError(t, customers.Create(ctx, c))
	assert.ErrorIs(t, customers.Create(ctx, &entity.Customer{UserID: "user-1", RazaoSocial: "X", CpfCnpj: "52998224725"}), domain.ErrDuplicate)

	got, err := customers.GetByUserAndDocument(ctx, "user-1", "52998224725")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "São Paulo", got.Endereco.Cidade)

	assert.ErrorIs(t, customers.Delete(ctx, "user-2", c.ID), domain.ErrNotFound)
	require.NoError(t, customers.Delete(ctx, "user-1", c.ID))

	// ── Servicios ──
	_, err = pool.Exec(ctx, `INSERT INTO tipos_servico (id, user_id, nome) VALUES ('tipo-1', 'user-1', 'Consultoria')`)
	require.NoError(t, err)
	services := postgres.NewServiceRepository(pool)
	svc := &entity.Service{
		UserID: "user-1", Nome: "Auditoria", TipoServicoID: "tipo-1", PrazoInicio: 1, PrazoEntrega: 10,
		Valor: decimal.RequireFromString("500.00"), Status: entity.ServiceStatusActive,
	}
	require.NoError(t, services.Create(ctx, svc))

	svc.Status = entity.ServiceStatusInactive
	updated, err := services.Update(ctx, svc)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, entity.ServiceStatusInactive, updated.Status)
	assert.Empty(t, updated.CategoriaServicoID)

	types, err := services.ListTypes(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, types, 1)
	require.NoError(t, services.Delete(ctx, "user-1", svc.ID))

	// ── Certificados ──
	companies := postgres.NewCompanyRepository(pool)
	company := &entity.Company{UserID: "user-1", CNPJ: "11222333000181", RegistrationStatus: entity.CompanyStatusActive}
	require.NoError(t, companies.Create(ctx, company))

	certs := postgres.NewCertificateRepository(pool)
	cert := &entity.Certificate{
		CompanyID: company.ID, Nome: "acme.pfx", Valido: true, Titular: "CN=ACME", NumeroDeSerie: "0a1b",
		DataValidade: time.Now().AddDate(1, 0, 0), Tipo: entity.CertificateKindA1, Status: entity.CertificateStatusActive,
	}
	require.NoError(t, certs.Create(ctx, cert))

	revoked, err := certs.Revoke(ctx, company.ID, cert.ID)
	require.NoError(t, err)
	require.NotNil(t, revoked)
	assert.False(t, revoked.Valido)

	list, err := certs.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.CertificateStatusRevoked, list[0].Status)
}
