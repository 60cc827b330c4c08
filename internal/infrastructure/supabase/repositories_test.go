package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/infrastructure/supabase"
)

const serviceKey = "service-role-key"

func newClient(t *testing.T, h http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return supabase.NewClient(srv.URL+"/rest/v1", serviceKey, zerolog.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyRegistration_PatchPorCNPJ(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/empresas", r.URL.Path)
		assert.Equal(t, "eq.12345678000190", r.URL.Query().Get("cnpj"))
		assert.Equal(t, serviceKey, r.Header.Get("apikey"))
		assert.Equal(t, "Bearer "+serviceKey, r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ativo", body["status_cadastro"])
		assert.Equal(t, "evt1", body["webhook_id"])
		assert.Equal(t, "ent-1", body["enotas_id"])

		_, _ = w.Write([]byte(`[{"id":"c1","user_id":"u1","cnpj":"12345678000190","status_cadastro":"ativo","webhook_id":"evt1","enotas_id":"ent-1","nome_fantasia":null,"created_at":"2024-01-01T10:00:00.123456+00:00"}]`))
	})

	got, err := supabase.NewCompanyRepository(client).ApplyRegistration(context.Background(), entity.CompanyRegistration{
		CNPJ: "12345678000190", RegistrationStatus: "ativo", WebhookID: "evt1", EnotasID: "ent-1",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, entity.CompanyStatusActive, got.RegistrationStatus)
	assert.Empty(t, got.NomeFantasia, "null se lee como vacío")
}

func TestApplyRegistration_SinCoincidencia(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	got, err := supabase.NewCompanyRepository(client).ApplyRegistration(context.Background(), entity.CompanyRegistration{CNPJ: "1"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByUserID_NoEncontrado(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte(`[]`))
	})
	got, err := supabase.NewCompanyRepository(client).GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreate_ConflictoEsDuplicado(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"empresas_cnpj_key\""}`))
	})
	err := supabase.NewCompanyRepository(client).Create(context.Background(), &entity.Company{CNPJ: "1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores
// ──────────────────────────────────────────────────────────────────────────────

func TestErrores5xxSonTransitorios(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := supabase.NewInvoiceRepository(client).MarkCancelled(context.Background(), "n1")

	var tse *domain.TransientStoreError
	require.ErrorAs(t, err, &tse)
	assert.Equal(t, "PATCH notas_fiscais", tse.Op)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "el adaptador no reintenta por su cuenta")
}

func TestErrores4xxSonPermanentes(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"42703","message":"column notas_fiscais.numero does not exist"}`))
	})
	_, err := supabase.NewInvoiceRepository(client).MarkIssued(context.Background(), entity.InvoiceIssuance{InvoiceID: "n1"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTransientStore)
	assert.Contains(t, err.Error(), "42703")
}

func TestErrorDeRedEsTransitorio(t *testing.T) {
	client := supabase.NewClient("http://127.0.0.1:1/rest/v1", serviceKey, zerolog.Nop())
	_, err := supabase.NewCompanyRepository(client).GetByCNPJ(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrTransientStore)
}

func TestSinCredenciales_ErrorDeConfiguracion(t *testing.T) {
	client := supabase.NewClient("", "", zerolog.Nop())
	_, err := supabase.NewCompanyRepository(client).GetByCNPJ(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notas, notificaciones y logs
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkIssued_DevuelveFila(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.n1", r.URL.Query().Get("id"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "emitida", body["status_emissao"])
		assert.Equal(t, "1001", body["numero"])
		_, _ = w.Write([]byte(`[{"id":"n1","empresa_id":"c1","numero":"1001","status_emissao":"emitida","data_emissao":"2024-03-10","valor_total":150.5}]`))
	})
	got, err := supabase.NewInvoiceRepository(client).MarkIssued(context.Background(), entity.InvoiceIssuance{
		InvoiceID: "n1", Numero: "1001", DataEmissao: "2024-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CompanyID)
	assert.True(t, got.ValorTotal.Equal(decimal.RequireFromString("150.5")))
}

func TestListByCompany_OrdenYPaginacion(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.c1", q.Get("empresa_id"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "40", q.Get("offset"))
		_, _ = w.Write([]byte(`[{"id":"n2"},{"id":"n1"}]`))
	})
	list, err := supabase.NewInvoiceRepository(client).ListByCompany(context.Background(), "c1", 20, 40)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSetEnotasID_SinFila(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	err := supabase.NewInvoiceRepository(client).SetEnotasID(context.Background(), "n1", "nfe-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotificaciones(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			assert.Equal(t, "eq.false", r.URL.Query().Get("read"))
			_, _ = w.Write([]byte(`[{"id":"x","user_id":"u1","message":"hola","type":"status_change","read":false}]`))
		case http.MethodPatch:
			assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
			_, _ = w.Write([]byte(`[]`))
		}
	})
	repo := supabase.NewNotificationRepository(client)
	ctx := context.Background()

	n := &entity.Notification{UserID: "u1", Message: "hola", Type: entity.NotificationStatusChange}
	require.NoError(t, repo.Create(ctx, n))
	assert.NotEmpty(t, n.ID)

	list, err := repo.ListUnread(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.ErrorIs(t, repo.MarkAsRead(ctx, "u1", "otra"), domain.ErrNotFound)
}

func TestWebhookLog_Create(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/webhook_logs", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "EmpresaCadastrada", body["event"])
		assert.Equal(t, map[string]any{"payload": "x"}, body["details"])
		w.WriteHeader(http.StatusCreated)
	})
	err := supabase.NewWebhookLogRepository(client).Create(context.Background(), &entity.WebhookLog{
		Event: "EmpresaCadastrada", Status: entity.WebhookLogSuccess, Details: json.RawMessage(`{"payload":"x"}`),
	})
	assert.NoError(t, err)
}
