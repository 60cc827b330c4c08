// Package nfse contiene validaciones de documentos fiscales brasileños (CNPJ, CPF)
// y utilidades de texto usadas al hablar con el gateway de NFS-e.
package nfse

import (
	"fmt"
	"unicode"
)

// pesos módulo 11 de la Receita Federal para los dos dígitos verificadores del CNPJ.
var (
	cnpjWeights1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits elimina puntos, barras y guiones: "12.345.678/0001-95" → "12345678000195".
func OnlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out = append(out, byte(r))
		}
	}
	return string(out)
}

// ValidateCNPJ valida longitud y dígitos verificadores. Acepta el CNPJ con o sin máscara.
func ValidateCNPJ(cnpj string) error {
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return fmt.Errorf("nfse: CNPJ debe tener 14 dígitos, se encontraron %d", len(digits))
	}
	if allSame(digits) {
		return fmt.Errorf("nfse: CNPJ inválido %s", digits)
	}
	d1 := checkDigit(digits[:12], cnpjWeights1[:])
	d2 := checkDigit(digits[:12]+string(d1), cnpjWeights2[:])
	if digits[12] != d1 || digits[13] != d2 {
		return fmt.Errorf("nfse: dígitos verificadores del CNPJ inválidos: esperado %c%c, recibido %s", d1, d2, digits[12:])
	}
	return nil
}

// ComputeCNPJCheckDigits calcula los dos dígitos verificadores para la base de 12 dígitos.
func ComputeCNPJCheckDigits(base string) (string, error) {
	digits := OnlyDigits(base)
	if len(digits) < 12 {
		return "", fmt.Errorf("nfse: se requieren 12 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	d1 := checkDigit(digits[:12], cnpjWeights1[:])
	d2 := checkDigit(digits[:12]+string(d1), cnpjWeights2[:])
	return string([]byte{d1, d2}), nil
}

// ValidateCPF valida un CPF de 11 dígitos (pesos decrecientes 10..2 y 11..2).
func ValidateCPF(cpf string) error {
	digits := OnlyDigits(cpf)
	if len(digits) != 11 {
		return fmt.Errorf("nfse: CPF debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	if allSame(digits) {
		return fmt.Errorf("nfse: CPF inválido %s", digits)
	}
	d1 := checkDigit(digits[:9], descending(10, 9))
	d2 := checkDigit(digits[:10], descending(11, 10))
	if digits[9] != d1 || digits[10] != d2 {
		return fmt.Errorf("nfse: dígitos verificadores del CPF inválidos")
	}
	return nil
}

// ValidateCpfCnpj acepta un CPF (persona física) o un CNPJ (persona jurídica) según la longitud.
func ValidateCpfCnpj(doc string) error {
	switch len(OnlyDigits(doc)) {
	case 11:
		return ValidateCPF(doc)
	case 14:
		return ValidateCNPJ(doc)
	default:
		return fmt.Errorf("nfse: documento debe ser CPF (11) o CNPJ (14 dígitos)")
	}
}

func checkDigit(digits string, weights []int) byte {
	var sum int
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}

func descending(from, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = from - i
	}
	return w
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
