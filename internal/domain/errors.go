package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrGateway      = errors.New("error en el gateway de facturación")

	// Errores del webhook de eNotas.
	ErrValidation       = errors.New("payload inválido")
	ErrMissingField     = errors.New("campo obligatorio ausente")
	ErrUnsupportedEvent = errors.New("evento no soportado")
	ErrConfiguration    = errors.New("configuración incompleta")
	ErrTransientStore   = errors.New("falla transitoria en el almacenamiento")
)

// ValidationError payload estructuralmente inválido (no se reintenta).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MissingFieldError el evento es reconocido pero falta su bloque de datos.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("campo %s no encontrado en el payload", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// UnsupportedEventError el evento está bien formado pero su tipo no es conocido.
// El mensaje viaja tal cual al gateway, por eso se mantiene en portugués.
type UnsupportedEventError struct {
	Kind string
}

func (e *UnsupportedEventError) Error() string {
	return "Evento não suportado: " + e.Kind
}

// Is también responde a ErrValidation: un tipo desconocido es una falla de validación de forma.
func (e *UnsupportedEventError) Is(target error) bool {
	return target == ErrUnsupportedEvent || target == ErrValidation
}

// ConfigurationError faltan valores de entorno requeridos.
type ConfigurationError struct {
	Keys []string
}

func (e *ConfigurationError) Error() string {
	return "variables de entorno no configuradas: " + strings.Join(e.Keys, ", ")
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// TransientStoreError falla de red o 5xx del almacenamiento; elegible para reintento.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

func (e *TransientStoreError) Is(target error) bool { return target == ErrTransientStore }
