package enotas_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/infrastructure/enotas"
)

const apiKey = "dGVzdC1rZXk="

func newClient(t *testing.T, h http.HandlerFunc) *enotas.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return enotas.NewClient(srv.URL, apiKey, zerolog.Nop())
}

func TestRegisterCompany_EnviaBasicAuthYDevuelveID(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/empresas", r.URL.Path)
		assert.Equal(t, "Basic "+apiKey, r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "11222333000181", body["cnpj"])
		assert.Equal(t, "SP", body["endereco"].(map[string]any)["uf"])

		_, _ = w.Write([]byte(`{"empresaId":"B1EA5ABB-7853"}`))
	})

	got, err := client.RegisterCompany(context.Background(), ports.GatewayCompany{
		CNPJ: "11222333000181", RazaoSocial: "Acme", Endereco: ports.GatewayAddress{UF: "SP", Cidade: "São Paulo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "B1EA5ABB-7853", got.ID)
	assert.Equal(t, "Acme", got.RazaoSocial)
}

func TestConfigureWebhook_RegistraLosTresEventos(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/empresas/emp-1/webhook", r.URL.Path)
		var body struct {
			URL     string   `json:"url"`
			Eventos []string `json:"eventos"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://api.example.com/webhooks/enotas", body.URL)
		assert.Len(t, body.Eventos, 3)
		_, _ = w.Write([]byte(`{"id":"wh-9"}`))
	})

	events := []string{"EmpresaCadastrada", "NotaFiscalEmitida", "NotaFiscalCancelada"}
	sub, err := client.ConfigureWebhook(context.Background(), "emp-1", "https://api.example.com/webhooks/enotas", events)
	require.NoError(t, err)
	assert.Equal(t, "wh-9", sub.ID)
	assert.Equal(t, events, sub.Eventos)
}

func TestUploadCertificate_Multipart(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/empresas/emp-1/certificadoDigital", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "segredo", r.FormValue("senha"))

		f, hdr, err := r.FormFile("arquivo")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte{0x30, 0x82}, data)
		assert.Equal(t, "Certificado-Joao.pfx", hdr.Filename)
		w.WriteHeader(http.StatusOK)
	})

	err := client.UploadCertificate(context.Background(), "emp-1", ports.CertificateUpload{
		FileName: "Certificado João.pfx", Data: []byte{0x30, 0x82}, Password: "segredo",
	})
	assert.NoError(t, err)
}

func TestIssueInvoice_ValorComoNumero(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/empresas/emp-1/nfes", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "NFS-e", body["tipo"])
		assert.Equal(t, 150.5, body["valorTotal"])
		assert.Equal(t, "nota-1", body["idExterno"])
		assert.Equal(t, "1.05", body["servico"].(map[string]any)["codigoServico"])
		_, _ = w.Write([]byte(`{"nfeId":"nfe-77"}`))
	})

	got, err := client.IssueInvoice(context.Background(), "emp-1", ports.GatewayInvoiceRequest{
		IDExterno: "nota-1", ValorTotal: decimal.RequireFromString("150.50"),
		Descricao: "Consultoria", CodigoServico: "1.05",
		Tomador: ports.GatewayTomador{RazaoSocial: "Cliente", Email: "c@example.com", CpfCnpj: "52998224725"},
	})
	require.NoError(t, err)
	assert.Equal(t, "nfe-77", got.ID)
	assert.Equal(t, "nota-1", got.IDExterno)
}

func TestListas_AceptanArrayYEnvelope(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empresas":
			_, _ = w.Write([]byte(`{"totalRecords":1,"data":[{"id":"e1","cnpj":"11222333000181"}]}`))
		case "/estados/SP/cidades/Campinas/servicos":
			_, _ = w.Write([]byte(`[{"codigo":"1.05","descricao":"Licenciamento","aliquota":2.5}]`))
		case "/empresas/e1/nfes":
			_, _ = w.Write([]byte(`{"data":[{"id":"n1","numero":"10","status":"Autorizada","valorTotal":"99.90"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	companies, err := client.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "e1", companies[0].ID)

	services, err := client.ListMunicipalServices(ctx, "sp", "Campinas")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, services[0].Aliquota.Equal(decimal.RequireFromString("2.5")))

	invoices, err := client.ListInvoices(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "10", invoices[0].Numero)
}

func TestErrorHTTP_EsErrGateway(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`[{"codigo":"CNPJ_INVALIDO","mensagem":"CNPJ inválido"}]`))
	})

	_, err := client.RegisterCompany(context.Background(), ports.GatewayCompany{CNPJ: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "CNPJ_INVALIDO: CNPJ inválido")
}

func TestSinAPIKey(t *testing.T) {
	client := enotas.NewClient("http://127.0.0.1:1", "", zerolog.Nop())
	_, err := client.ListCompanies(context.Background())
	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Contains(t, err.Error(), "ENOTAS_API_KEY")
}
