package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/nfse-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate aplica las etiquetas validate de un DTO. Devuelve un error que envuelve
// domain.ErrInvalidInput con los campos en falla ("email: email, endereco.uf: len").
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe.Namespace())+": "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}

// fieldPath quita el nombre del struct raíz: "RegisterCompanyRequest.Endereco.UF" → "endereco.uf".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}
