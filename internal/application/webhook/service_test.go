package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/application/webhook"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
	"github.com/jhoicas/nfse-api/internal/infrastructure/memory"
	"github.com/jhoicas/nfse-api/pkg/retry"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCNPJ = "12345678000190"

// spyCompanies cuenta llamadas a ApplyRegistration y puede fallar las primeras N.
type spyCompanies struct {
	repository.CompanyRepository
	applyCalls int
	failFirst  int
	failErr    error
}

func (s *spyCompanies) ApplyRegistration(ctx context.Context, reg entity.CompanyRegistration) (*entity.Company, error) {
	s.applyCalls++
	if s.applyCalls <= s.failFirst {
		return nil, s.failErr
	}
	return s.CompanyRepository.ApplyRegistration(ctx, reg)
}

type spyInvoices struct {
	repository.InvoiceRepository
	issuedCalls    int
	cancelledCalls int
}

func (s *spyInvoices) MarkIssued(ctx context.Context, in entity.InvoiceIssuance) (*entity.Invoice, error) {
	s.issuedCalls++
	return s.InvoiceRepository.MarkIssued(ctx, in)
}

func (s *spyInvoices) MarkCancelled(ctx context.Context, id string) (*entity.Invoice, error) {
	s.cancelledCalls++
	return s.InvoiceRepository.MarkCancelled(ctx, id)
}

type fixture struct {
	store     *memory.Store
	companies *spyCompanies
	invoices  *spyInvoices
	svc       *webhook.Service
	company   *entity.Company
	invoice   *entity.Invoice
}

func fastOptions() webhook.Options {
	opts := webhook.DefaultOptions()
	opts.Retry = retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}
	return opts
}

func newFixture(t *testing.T, opts webhook.Options) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	company := &entity.Company{
		UserID: "user-1", CNPJ: testCNPJ, RazaoSocial: "Acme Serviços LTDA",
		RegistrationStatus: entity.CompanyStatusPending,
	}
	require.NoError(t, store.Companies().Create(ctx, company))
	invoice := &entity.Invoice{CompanyID: company.ID, EmissionStatus: entity.InvoiceStatusPending}
	require.NoError(t, store.Invoices().Create(ctx, invoice))

	f := &fixture{
		store:     store,
		companies: &spyCompanies{CompanyRepository: store.Companies()},
		invoices:  &spyInvoices{InvoiceRepository: store.Invoices()},
		company:   company,
		invoice:   invoice,
	}
	f.svc = webhook.NewService(webhook.Deps{
		Companies:     f.companies,
		Invoices:      f.invoices,
		Notifications: store.Notifications(),
		WebhookLogs:   store.WebhookLogs(),
	}, opts, zerolog.Nop())
	return f
}

func payload(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func companyEvent(status string) map[string]any {
	return map[string]any{
		"evento": webhook.EventCompanyRegistered,
		"id":     "evt1",
		"data": map[string]any{
			"empresa": map[string]any{"id": "ent-1", "cnpj": testCNPJ, "status": status},
		},
	}
}

func invoiceEvent(kind, id string) map[string]any {
	return map[string]any{
		"evento": kind,
		"id":     "evt-nf-1",
		"data": map[string]any{
			"notaFiscal": map[string]any{"id": id, "numero": "1001", "status": "Autorizada", "dataEmissao": "2024-03-10T14:00:00Z"},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho
// ──────────────────────────────────────────────────────────────────────────────

// Cada tipo válido invoca exactamente un reconciliador y ningún otro.
func TestHandle_DespachaUnSoloReconciliador(t *testing.T) {
	cases := []struct {
		name                            string
		build                           func(f *fixture) map[string]any
		wantApply, wantIssued, wantCanc int
	}{
		{"EmpresaCadastrada", func(*fixture) map[string]any { return companyEvent("ativo") }, 1, 0, 0},
		{"NotaFiscalEmitida", func(f *fixture) map[string]any { return invoiceEvent(webhook.EventInvoiceIssued, f.invoice.ID) }, 0, 1, 0},
		{"NotaFiscalCancelada", func(f *fixture) map[string]any { return invoiceEvent(webhook.EventInvoiceCancelled, f.invoice.ID) }, 0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, fastOptions())
			res := f.svc.Handle(context.Background(), payload(t, tc.build(f)))

			assert.True(t, res.Success, res.Error)
			assert.Equal(t, http.StatusOK, res.Status)
			assert.Equal(t, tc.wantApply, f.companies.applyCalls)
			assert.Equal(t, tc.wantIssued, f.invoices.issuedCalls)
			assert.Equal(t, tc.wantCanc, f.invoices.cancelledCalls)
		})
	}
}

func TestHandle_EventoDesconocido_400SinMutacion(t *testing.T) {
	f := newFixture(t, fastOptions())
	raw := payload(t, map[string]any{"evento": "EmpresaRemovida", "id": "evt9", "data": map[string]any{}})

	res := f.svc.Handle(context.Background(), raw)

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Evento não suportado: EmpresaRemovida", res.Error)
	assert.Zero(t, f.companies.applyCalls+f.invoices.issuedCalls+f.invoices.cancelledCalls)
}

func TestHandle_EmpresaSinBloque_500SinMutacion(t *testing.T) {
	f := newFixture(t, fastOptions())
	raw := payload(t, map[string]any{"evento": webhook.EventCompanyRegistered, "id": "evt1", "data": map[string]any{}})

	res := f.svc.Handle(context.Background(), raw)

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Contains(t, res.Error, "data.empresa")
	assert.Zero(t, f.companies.applyCalls)

	got, err := f.store.Companies().GetByCNPJ(context.Background(), testCNPJ)
	require.NoError(t, err)
	assert.Equal(t, entity.CompanyStatusPending, got.RegistrationStatus)
}

func TestHandle_NotaSinBloque_500(t *testing.T) {
	f := newFixture(t, fastOptions())
	for _, kind := range []string{webhook.EventInvoiceIssued, webhook.EventInvoiceCancelled} {
		raw := payload(t, map[string]any{"evento": kind, "id": "evt1", "data": map[string]any{}})
		res := f.svc.Handle(context.Background(), raw)
		assert.Equal(t, http.StatusInternalServerError, res.Status, kind)
		assert.Contains(t, res.Error, "data.notaFiscal")
	}
	assert.Zero(t, f.invoices.issuedCalls+f.invoices.cancelledCalls)
}

func TestHandle_PayloadInvalido_500(t *testing.T) {
	f := newFixture(t, fastOptions())
	bodies := []string{
		``,
		`null`,
		`[]`,
		`"EmpresaCadastrada"`,
		`{bad json`,
		`{"id":"evt1","data":{}}`,
		`{"evento":"EmpresaCadastrada","data":{}}`,
		`{"evento":"EmpresaCadastrada","id":"evt1"}`,
		`{"evento":"EmpresaCadastrada","id":"evt1","data":null}`,
		`{"evento":"","id":"evt1","data":{}}`,
	}
	for _, body := range bodies {
		res := f.svc.Handle(context.Background(), []byte(body))
		assert.False(t, res.Success, body)
		assert.Equal(t, http.StatusInternalServerError, res.Status, body)
		assert.NotEmpty(t, res.Error, body)
	}
	assert.Zero(t, f.companies.applyCalls)
}

func TestHandle_SinStore_ErrorDeConfiguracion(t *testing.T) {
	svc := webhook.NewService(webhook.Deps{}, fastOptions(), zerolog.Nop())
	res := svc.Handle(context.Background(), payload(t, companyEvent("ativo")))

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Contains(t, res.Error, "SUPABASE_URL")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestHandle_EmpresaCadastradaAtivo(t *testing.T) {
	f := newFixture(t, fastOptions())

	res := f.svc.Handle(context.Background(), payload(t, companyEvent("ativo")))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, http.StatusOK, res.Status)

	got, err := f.store.Companies().GetByCNPJ(context.Background(), testCNPJ)
	require.NoError(t, err)
	assert.Equal(t, entity.CompanyStatusActive, got.RegistrationStatus)
	assert.Equal(t, "evt1", got.WebhookID)
	assert.Equal(t, "ent-1", got.EnotasID)

	notes := f.store.NotificationEntries()
	require.Len(t, notes, 1)
	assert.Equal(t, "user-1", notes[0].UserID)
	assert.Equal(t, entity.NotificationStatusChange, notes[0].Type)
	assert.Contains(t, notes[0].Message, "aprovado")
}

// Cualquier status distinto de "ativo" se traduce en erro.
func TestHandle_EmpresaCadastradaRecusado(t *testing.T) {
	f := newFixture(t, fastOptions())

	res := f.svc.Handle(context.Background(), payload(t, companyEvent("recusado")))
	require.True(t, res.Success, res.Error)

	got, err := f.store.Companies().GetByCNPJ(context.Background(), testCNPJ)
	require.NoError(t, err)
	assert.Equal(t, entity.CompanyStatusError, got.RegistrationStatus)
	assert.Equal(t, "evt1", got.WebhookID)
	assert.Equal(t, "ent-1", got.EnotasID)
}

func TestHandle_CNPJConMascara_CoincideConDigitos(t *testing.T) {
	f := newFixture(t, fastOptions())
	ev := companyEvent("ativo")
	ev["data"].(map[string]any)["empresa"].(map[string]any)["cnpj"] = "12.345.678/0001-90"

	res := f.svc.Handle(context.Background(), payload(t, ev))
	assert.True(t, res.Success, res.Error)
}

// Reentregar el mismo NotaFiscalEmitida deja el mismo estado final.
func TestHandle_NotaFiscalEmitida_Idempotente(t *testing.T) {
	f := newFixture(t, fastOptions())
	raw := payload(t, invoiceEvent(webhook.EventInvoiceIssued, f.invoice.ID))

	require.True(t, f.svc.Handle(context.Background(), raw).Success)
	first, err := f.store.Invoices().GetByID(context.Background(), f.invoice.ID)
	require.NoError(t, err)

	require.True(t, f.svc.Handle(context.Background(), raw).Success)
	second, err := f.store.Invoices().GetByID(context.Background(), f.invoice.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusIssued, second.EmissionStatus)
	assert.Equal(t, "1001", second.Numero)
	assert.Equal(t, "2024-03-10T14:00:00Z", second.DataEmissao)
	assert.Equal(t, first.EmissionStatus, second.EmissionStatus)
	assert.Equal(t, first.Numero, second.Numero)
	assert.Equal(t, first.DataEmissao, second.DataEmissao)
}

func TestHandle_NotaFiscalCancelada_NoAsignaNumero(t *testing.T) {
	f := newFixture(t, fastOptions())

	res := f.svc.Handle(context.Background(), payload(t, invoiceEvent(webhook.EventInvoiceCancelled, f.invoice.ID)))
	require.True(t, res.Success, res.Error)

	got, err := f.store.Invoices().GetByID(context.Background(), f.invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, got.EmissionStatus)
	assert.Empty(t, got.Numero)

	notes := f.store.NotificationEntries()
	require.Len(t, notes, 1, "el dueño se resuelve por empresa_id")
	assert.Equal(t, "user-1", notes[0].UserID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos y coincidencia
// ──────────────────────────────────────────────────────────────────────────────

func TestHandle_FallaTransitoria_SeReintenta(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.companies.failFirst = 2
	f.companies.failErr = &domain.TransientStoreError{Op: "PATCH empresas", Err: errors.New("503")}

	res := f.svc.Handle(context.Background(), payload(t, companyEvent("ativo")))

	assert.True(t, res.Success, res.Error)
	assert.Equal(t, 3, f.companies.applyCalls)
}

func TestHandle_FallaTransitoriaPersistente_500TrasNIntentos(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.companies.failFirst = 100
	f.companies.failErr = &domain.TransientStoreError{Op: "PATCH empresas", Err: errors.New("connection refused")}

	res := f.svc.Handle(context.Background(), payload(t, companyEvent("ativo")))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Contains(t, res.Error, "connection refused")
	assert.Equal(t, 3, f.companies.applyCalls)
}

func TestHandle_ErrorNoTransitorio_NoSeReintenta(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.companies.failFirst = 100
	f.companies.failErr = errors.New("column \"status_cadastro\" does not exist")

	res := f.svc.Handle(context.Background(), payload(t, companyEvent("ativo")))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, 1, f.companies.applyCalls)
}

func TestHandle_SinCoincidencia_RequireMatch(t *testing.T) {
	f := newFixture(t, fastOptions())

	res := f.svc.Handle(context.Background(), payload(t, invoiceEvent(webhook.EventInvoiceIssued, "no-existe")))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Contains(t, res.Error, "ninguna fila")
	assert.Equal(t, 1, f.invoices.issuedCalls, "sin coincidencia no se reintenta")
}

func TestHandle_SinCoincidencia_SinRequireMatchConfirma(t *testing.T) {
	opts := fastOptions()
	opts.RequireMatch = false
	f := newFixture(t, opts)

	res := f.svc.Handle(context.Background(), payload(t, invoiceEvent(webhook.EventInvoiceIssued, "no-existe")))

	assert.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, f.store.NotificationEntries())
}

// ──────────────────────────────────────────────────────────────────────────────
// Efectos opcionales
// ──────────────────────────────────────────────────────────────────────────────

func TestHandle_GuardaWebhookLog(t *testing.T) {
	f := newFixture(t, fastOptions())

	f.svc.Handle(context.Background(), payload(t, companyEvent("ativo")))
	f.svc.Handle(context.Background(), []byte(`{bad`))

	logs := f.store.WebhookLogEntries()
	require.Len(t, logs, 2)
	assert.Equal(t, webhook.EventCompanyRegistered, logs[0].Event)
	assert.Equal(t, entity.WebhookLogSuccess, logs[0].Status)
	assert.True(t, json.Valid(logs[0].Details))

	assert.Equal(t, "desconocido", logs[1].Event)
	assert.Equal(t, entity.WebhookLogError, logs[1].Status)
	assert.True(t, json.Valid(logs[1].Details), "un payload inválido se guarda como string")
}

func TestHandle_SinNotificacionesNiLog(t *testing.T) {
	opts := fastOptions()
	opts.NotifyUsers = false
	opts.SaveEventLog = false
	f := newFixture(t, opts)

	res := f.svc.Handle(context.Background(), payload(t, companyEvent("ativo")))

	assert.True(t, res.Success)
	assert.Empty(t, f.store.NotificationEntries())
	assert.Empty(t, f.store.WebhookLogEntries())
}
