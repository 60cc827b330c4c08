package enotas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/pkg/nfse"
)

// Verificar en tiempo de compilación que Client implementa InvoicingGateway.
var _ ports.InvoicingGateway = (*Client)(nil)

// DefaultBaseURL API v1 de eNotas.
const DefaultBaseURL = "https://api.enotasgw.com.br/v1"

const maxResponseBody = 1 << 20

// Client adaptador REST del gateway eNotas. Usa net/http; eNotas no publica SDK en Go.
// Se construye una vez en main y es seguro para uso concurrente.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el adaptador. Si apiKey está vacío las llamadas devuelven
// error descriptivo en lugar de fallar al arrancar.
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "enotas").Logger(),
	}
}

// WithHTTPClient reemplaza el cliente HTTP (tests, proxies).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ── Empresas ─────────────────────────────────────────────────────────────────

func (c *Client) RegisterCompany(ctx context.Context, company ports.GatewayCompany) (*ports.GatewayCompany, error) {
	var out companyWire
	if err := c.doJSON(ctx, http.MethodPost, "/empresas", toCompanyWire(company), &out); err != nil {
		return nil, fmt.Errorf("registrar empresa: %w", err)
	}
	registered := company
	registered.ID = out.identifier()
	if registered.ID == "" {
		return nil, fmt.Errorf("registrar empresa: %w: respuesta sin id", domain.ErrGateway)
	}
	return &registered, nil
}

func (c *Client) ListCompanies(ctx context.Context) ([]ports.GatewayCompany, error) {
	var list []companyWire
	if err := c.doList(ctx, "/empresas", &list); err != nil {
		return nil, fmt.Errorf("listar empresas: %w", err)
	}
	out := make([]ports.GatewayCompany, 0, len(list))
	for _, w := range list {
		out = append(out, w.toPort())
	}
	return out, nil
}

// UploadCertificate envía el .pfx como multipart (campos arquivo y senha).
func (c *Client) UploadCertificate(ctx context.Context, enotasID string, cert ports.CertificateUpload) error {
	if enotasID == "" {
		return fmt.Errorf("vincular certificado: %w: empresa sin enotas_id", domain.ErrInvalidInput)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	name := nfse.SafeFileName(cert.FileName)
	if name == "arquivo" {
		name = "certificado.pfx"
	}
	fw, err := mw.CreateFormFile("arquivo", name)
	if err != nil {
		return fmt.Errorf("vincular certificado: %w", err)
	}
	if _, err := fw.Write(cert.Data); err != nil {
		return fmt.Errorf("vincular certificado: %w", err)
	}
	if err := mw.WriteField("senha", cert.Password); err != nil {
		return fmt.Errorf("vincular certificado: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("vincular certificado: %w", err)
	}

	path := "/empresas/" + url.PathEscape(enotasID) + "/certificadoDigital"
	if _, err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf); err != nil {
		return fmt.Errorf("vincular certificado: %w", err)
	}
	return nil
}

func (c *Client) ConfigureWebhook(ctx context.Context, enotasID, hookURL string, events []string) (*ports.WebhookSubscription, error) {
	req := webhookWire{URL: hookURL, Eventos: events}
	var out webhookWire
	path := "/empresas/" + url.PathEscape(enotasID) + "/webhook"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, fmt.Errorf("configurar webhook: %w", err)
	}
	sub := &ports.WebhookSubscription{ID: out.ID, URL: out.URL, Eventos: out.Eventos}
	if sub.URL == "" {
		sub.URL = hookURL
	}
	if len(sub.Eventos) == 0 {
		sub.Eventos = events
	}
	return sub, nil
}

// ── Servicios ────────────────────────────────────────────────────────────────

func (c *Client) ListMunicipalServices(ctx context.Context, uf, cidade string) ([]ports.MunicipalService, error) {
	path := "/estados/" + url.PathEscape(strings.ToUpper(uf)) + "/cidades/" + url.PathEscape(cidade) + "/servicos"
	var list []serviceWire
	if err := c.doList(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("servicios municipales: %w", err)
	}
	out := make([]ports.MunicipalService, 0, len(list))
	for _, s := range list {
		out = append(out, ports.MunicipalService{Codigo: s.Codigo, Descricao: s.Descricao, Aliquota: s.Aliquota})
	}
	return out, nil
}

// ── Notas fiscais ────────────────────────────────────────────────────────────

func (c *Client) IssueInvoice(ctx context.Context, enotasID string, req ports.GatewayInvoiceRequest) (*ports.GatewayInvoice, error) {
	if req.Tipo == "" {
		req.Tipo = ports.InvoiceKindNFSe
	}
	var out invoiceWire
	path := "/empresas/" + url.PathEscape(enotasID) + "/nfes"
	if err := c.doJSON(ctx, http.MethodPost, path, toInvoiceRequestWire(req), &out); err != nil {
		return nil, fmt.Errorf("emitir nota: %w", err)
	}
	inv := out.toPort()
	if inv.IDExterno == "" {
		inv.IDExterno = req.IDExterno
	}
	return &inv, nil
}

func (c *Client) ListInvoices(ctx context.Context, enotasID string) ([]ports.GatewayInvoice, error) {
	var list []invoiceWire
	if err := c.doList(ctx, "/empresas/"+url.PathEscape(enotasID)+"/nfes", &list); err != nil {
		return nil, fmt.Errorf("listar notas: %w", err)
	}
	out := make([]ports.GatewayInvoice, 0, len(list))
	for _, w := range list {
		out = append(out, w.toPort())
	}
	return out, nil
}

// ── Transporte ───────────────────────────────────────────────────────────────

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("serializar request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	raw, err := c.do(ctx, method, path, "application/json", body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: deserializar respuesta: %v", domain.ErrGateway, err)
	}
	return nil
}

// doList acepta tanto un array como el envelope paginado {"data": [...]}.
func (c *Client) doList(ctx context.Context, path string, out any) error {
	raw, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%w: deserializar respuesta: %v", domain.ErrGateway, err)
		}
		raw = env.Data
		if len(raw) == 0 {
			return nil
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: deserializar respuesta: %v", domain.ErrGateway, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: ENOTAS_API_KEY no configurado", domain.ErrGateway)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrGateway, ctx.Err())
		}
		return nil, fmt.Errorf("%w: llamada HTTP fallida: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrGateway, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("eNotas")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrGateway, resp.StatusCode, apiErrorMessage(raw))
	}
	return raw, nil
}

// apiErrorMessage extrae el mensaje de los errores de eNotas ([{codigo, mensagem}] o {mensagem}).
func apiErrorMessage(raw []byte) string {
	var list []apiErrorWire
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		msgs := make([]string, 0, len(list))
		for _, e := range list {
			msgs = append(msgs, e.String())
		}
		return strings.Join(msgs, "; ")
	}
	var single apiErrorWire
	if json.Unmarshal(raw, &single) == nil && single.Mensagem != "" {
		return single.String()
	}
	return strings.TrimSpace(string(raw))
}
