// Package webhook recibe los eventos de eNotas, los valida, los despacha por tipo
// y aplica la escritura correspondiente sobre empresas o notas_fiscais.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
	"github.com/jhoicas/nfse-api/pkg/retry"
)

// maxLoggedPayload límite de bytes del payload que se copia al log de recepción.
const maxLoggedPayload = 4096

// Result acuse devuelto al gateway. Status es el código HTTP a usar.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"-"`
}

// Deps repositorios del servicio. Notifications y WebhookLogs son opcionales.
type Deps struct {
	Companies     repository.CompanyRepository
	Invoices      repository.InvoiceRepository
	Notifications repository.NotificationRepository
	WebhookLogs   repository.WebhookLogRepository
}

// Options comportamiento de la reconciliación (ver config.WebhookConfig).
type Options struct {
	Retry        retry.Config
	RequireMatch bool
	NotifyUsers  bool
	SaveEventLog bool
}

// DefaultOptions 3 intentos / 1 s, coincidencia obligatoria, notificaciones y log activos.
func DefaultOptions() Options {
	return Options{Retry: retry.DefaultConfig(), RequireMatch: true, NotifyUsers: true, SaveEventLog: true}
}

type reconciler func(ctx context.Context, ev *Event) error

// Service despachador de eventos. Sin estado entre invocaciones: seguro para uso concurrente.
type Service struct {
	deps      Deps
	opts      Options
	validator *Validator
	log       zerolog.Logger
	handlers  map[string]reconciler
}

// NewService construye el despachador. Con Companies o Invoices nil, Handle responde
// ConfigurationError en cada invocación en lugar de fallar al arrancar.
func NewService(deps Deps, opts Options, log zerolog.Logger) *Service {
	s := &Service{
		deps:      deps,
		opts:      opts,
		validator: NewValidator(),
		log:       log.With().Str("component", "webhook").Logger(),
	}
	s.handlers = map[string]reconciler{
		EventCompanyRegistered: s.companyRegistered,
		EventInvoiceIssued:     s.invoiceIssued,
		EventInvoiceCancelled:  s.invoiceCancelled,
	}
	return s
}

// Handle procesa un cuerpo crudo y siempre devuelve un acuse; ningún error escapa.
//
//	200 {success:true}                     evento aplicado
//	400 {success:false, error:"Evento não suportado: X"}
//	500 {success:false, error:<mensaje>}   configuración, validación, datos faltantes o store
func (s *Service) Handle(ctx context.Context, raw []byte) Result {
	start := time.Now()
	s.log.Info().
		Int("bytes", len(raw)).
		Str("payload", truncate(raw, maxLoggedPayload)).
		Msg("webhook recibido")

	ev, err := s.process(ctx, raw)
	res := toResult(err)

	logEv := s.log.Info()
	if err != nil {
		logEv = s.log.Error().Err(err)
	}
	logEv.
		Str("evento", eventKind(ev, raw)).
		Str("event_id", eventID(ev)).
		Int("status", res.Status).
		Dur("elapsed", time.Since(start)).
		Msg("webhook procesado")

	s.saveEventLog(ctx, ev, raw, err)
	return res
}

func (s *Service) process(ctx context.Context, raw []byte) (*Event, error) {
	if s.deps.Companies == nil || s.deps.Invoices == nil {
		return nil, &domain.ConfigurationError{Keys: []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"}}
	}

	ev, err := s.validator.Validate(raw)
	if err != nil {
		return ev, err
	}

	handle, ok := s.handlers[ev.Evento]
	if !ok {
		return ev, &domain.UnsupportedEventError{Kind: ev.Evento}
	}
	return ev, handle(ctx, ev)
}

func toResult(err error) Result {
	switch {
	case err == nil:
		return Result{Success: true, Status: http.StatusOK}
	case errors.Is(err, domain.ErrUnsupportedEvent):
		return Result{Success: false, Error: err.Error(), Status: http.StatusBadRequest}
	default:
		return Result{Success: false, Error: err.Error(), Status: http.StatusInternalServerError}
	}
}

// saveEventLog inserta en webhook_logs; una falla aquí no cambia el acuse.
func (s *Service) saveEventLog(ctx context.Context, ev *Event, raw []byte, procErr error) {
	if !s.opts.SaveEventLog || s.deps.WebhookLogs == nil {
		return
	}
	details := struct {
		Payload json.RawMessage `json:"payload"`
		Error   string          `json:"error,omitempty"`
	}{Payload: payloadJSON(raw)}
	status := entity.WebhookLogSuccess
	if procErr != nil {
		status = entity.WebhookLogError
		details.Error = procErr.Error()
	}
	b, err := json.Marshal(details)
	if err != nil {
		s.log.Warn().Err(err).Msg("no se pudo serializar webhook_log")
		return
	}
	entry := &entity.WebhookLog{Event: eventKind(ev, raw), Status: status, Details: b}
	if err := s.deps.WebhookLogs.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("evento", entry.Event).Msg("no se pudo guardar webhook_log")
	}
}

// payloadJSON devuelve raw si es JSON válido; si no, lo guarda como string.
func payloadJSON(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(string(raw))
	return b
}

// eventKind tipo de evento para logs. Si la validación falló se intenta leer igual.
func eventKind(ev *Event, raw []byte) string {
	if ev != nil && ev.Evento != "" {
		return ev.Evento
	}
	var probe struct {
		Evento string `json:"evento"`
	}
	if json.Unmarshal(raw, &probe) == nil && probe.Evento != "" {
		return probe.Evento
	}
	return "desconocido"
}

func eventID(ev *Event) string {
	if ev == nil {
		return ""
	}
	return ev.ID
}

func truncate(raw []byte, n int) string {
	if len(raw) <= n {
		return string(raw)
	}
	return string(raw[:n]) + "…"
}
