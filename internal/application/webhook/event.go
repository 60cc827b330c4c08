package webhook

// Tipos de evento que eNotas entrega al webhook.
const (
	EventCompanyRegistered = "EmpresaCadastrada"
	EventInvoiceIssued     = "NotaFiscalEmitida"
	EventInvoiceCancelled  = "NotaFiscalCancelada"
)

// KnownEvents lista los tipos reconocidos, en el orden en que se registran en el gateway.
var KnownEvents = []string{EventCompanyRegistered, EventInvoiceIssued, EventInvoiceCancelled}

// IsKnownEvent informa si kind es uno de los tres eventos soportados.
func IsKnownEvent(kind string) bool {
	for _, k := range KnownEvents {
		if k == kind {
			return true
		}
	}
	return false
}

// Event notificación entrante del gateway. Es efímera: solo se registra en logs.
type Event struct {
	Evento string     `json:"evento" validate:"required"`
	ID     string     `json:"id" validate:"required"`
	Data   *EventData `json:"data" validate:"required"`
}

// EventData bloque de datos específico de cada tipo de evento.
type EventData struct {
	Empresa    *CompanyPayload `json:"empresa,omitempty"`
	NotaFiscal *InvoicePayload `json:"notaFiscal,omitempty"`
}

// CompanyPayload datos de EmpresaCadastrada.
type CompanyPayload struct {
	ID     string `json:"id"`
	CNPJ   string `json:"cnpj"`
	Status string `json:"status"`
}

// InvoicePayload datos de NotaFiscalEmitida / NotaFiscalCancelada.
// ID es el id del registro en notas_fiscais (enviado como idExterno al emitir).
type InvoicePayload struct {
	ID          string `json:"id"`
	Numero      string `json:"numero"`
	Status      string `json:"status"`
	DataEmissao string `json:"dataEmissao"`
}
