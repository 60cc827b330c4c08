// Package supabase implementa los repositorios sobre la API REST (PostgREST) de Supabase
// usando la service role key. Las tablas son las mismas que usa el dashboard.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-api/internal/domain"
)

const (
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"

	maxResponseBody = 4 << 20
)

// Client acceso HTTP a PostgREST. Seguro para uso concurrente.
type Client struct {
	restURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient restURL es <SUPABASE_URL>/rest/v1 (ver config.SupabaseConfig.RESTURL).
func NewClient(restURL, serviceRoleKey string, log zerolog.Logger) *Client {
	return &Client{
		restURL: strings.TrimRight(restURL, "/"),
		apiKey:  serviceRoleKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("component", "supabase").Logger(),
	}
}

// WithHTTPClient reemplaza el cliente HTTP (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// postgrestError cuerpo de error de PostgREST.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// eq construye el filtro PostgREST columna=eq.valor.
func eq(v string) string { return "eq." + v }

// selectRows GET /table?query → out (slice de filas).
func (c *Client) selectRows(ctx context.Context, table string, query url.Values, out any) error {
	if query.Get("select") == "" {
		query.Set("select", "*")
	}
	return c.do(ctx, http.MethodGet, table, query, nil, "", out)
}

// insert POST /table con la fila; si out no es nil recibe la representación insertada.
func (c *Client) insert(ctx context.Context, table string, row any, out any) error {
	prefer := preferMinimal
	if out != nil {
		prefer = preferRepresentation
	}
	return c.do(ctx, http.MethodPost, table, nil, row, prefer, out)
}

// update PATCH /table?filtros con los campos; out recibe las filas afectadas (vacío = sin coincidencia).
func (c *Client) update(ctx context.Context, table string, query url.Values, fields map[string]any, out any) error {
	return c.do(ctx, http.MethodPatch, table, query, fields, preferRepresentation, out)
}

// remove DELETE /table?filtros; out recibe las filas borradas (vacío = sin coincidencia).
func (c *Client) remove(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, table, query, nil, preferRepresentation, out)
}

// do envía la petición. Red y 5xx → *domain.TransientStoreError; 409 → domain.ErrDuplicate;
// otros 4xx → error permanente con el mensaje de PostgREST.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string, out any) error {
	op := method + " " + table
	if c.restURL == "" || c.apiKey == "" {
		return &domain.ConfigurationError{Keys: []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"}}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: serializar: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	endpoint := c.restURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: crear request: %w", op, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		return &domain.TransientStoreError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &domain.TransientStoreError{Op: op, Err: err}
	}
	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("postgrest")

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		return &domain.TransientStoreError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorMessage(raw))}
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrDuplicate, errorMessage(raw))
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s: HTTP %d: %s", op, resp.StatusCode, errorMessage(raw))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: deserializar respuesta: %w", op, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var pe postgrestError
	if err := json.Unmarshal(raw, &pe); err == nil && pe.Message != "" {
		msg := pe.Message
		if pe.Code != "" {
			msg = pe.Code + ": " + msg
		}
		if pe.Details != "" {
			msg += " (" + pe.Details + ")"
		}
		return msg
	}
	return strings.TrimSpace(string(raw))
}

// first devuelve el primer elemento o nil.
func first[T any](rows []T) *T {
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}
