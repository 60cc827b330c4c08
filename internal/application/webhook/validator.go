package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/nfse-api/internal/domain"
)

// Mensajes devueltos al gateway (portugués, como el resto del contrato de eNotas).
const (
	msgInvalidPayload = "Payload inválido"
	msgMissingFields  = "Payload não contém campos obrigatórios"
)

// Validator rechaza payloads mal formados antes de cualquier efecto secundario.
type Validator struct {
	v *validator.Validate
}

// NewValidator construye el validador; se crea una vez y es seguro para uso concurrente.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate decodifica raw y garantiza que es un evento reconocido.
//
//   - cuerpo vacío, null, array o escalar     → *domain.ValidationError
//   - evento, id o data ausentes/vacíos        → *domain.ValidationError
//   - evento bien formado pero tipo desconocido → *domain.UnsupportedEventError
func (val *Validator) Validate(raw []byte) (*Event, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &domain.ValidationError{Reason: msgInvalidPayload}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return nil, &domain.ValidationError{Reason: msgInvalidPayload}
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("%s: %v", msgInvalidPayload, err)}
	}

	if err := val.v.Struct(ev); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, jsonFieldName(fe.Field()))
			}
			return nil, &domain.ValidationError{
				Reason: fmt.Sprintf("%s: %s", msgMissingFields, strings.Join(fields, ", ")),
			}
		}
		return nil, &domain.ValidationError{Reason: msgMissingFields}
	}

	if !IsKnownEvent(ev.Evento) {
		return nil, &domain.UnsupportedEventError{Kind: ev.Evento}
	}
	return &ev, nil
}

func jsonFieldName(structField string) string {
	switch structField {
	case "Evento":
		return "evento"
	case "ID":
		return "id"
	case "Data":
		return "data"
	default:
		return strings.ToLower(structField)
	}
}
