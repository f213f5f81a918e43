// Package identifier canonicaliza códigos escaneados (IMEI y similares) a 15 dígitos.
// Es puro: sin I/O ni estado.
package identifier

import (
	"github.com/jhoicas/tenant-stock-api/internal/domain"
)

// Length longitud del identificador canónico.
const Length = 15

// payloadLength dígitos a los que se les agrega el dígito de control.
const payloadLength = Length - 1

// Normalize elimina todo lo que no sea dígito y devuelve el identificador canónico:
//   - 14 dígitos: se agrega el dígito de control Luhn;
//   - 15 o más: se conservan los últimos 15;
//   - menos de 14: domain.ErrIdentifierInvalid.
func Normalize(raw string) (string, error) {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	switch {
	case len(digits) < payloadLength:
		return "", domain.ErrIdentifierInvalid
	case len(digits) == payloadLength:
		return string(append(digits, checkDigit(digits))), nil
	default:
		return string(digits[len(digits)-Length:]), nil
	}
}

// CheckDigit dígito de control Luhn para un payload de 14 dígitos.
func CheckDigit(payload string) (byte, error) {
	if len(payload) != payloadLength {
		return 0, domain.ErrIdentifierInvalid
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] < '0' || payload[i] > '9' {
			return 0, domain.ErrIdentifierInvalid
		}
	}
	return checkDigit([]byte(payload)), nil
}

// Valid indica si s tiene 15 dígitos y su último dígito es un control Luhn válido.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	d, err := CheckDigit(s[:payloadLength])
	if err != nil {
		return false
	}
	return s[payloadLength] == d
}

// checkDigit duplica cada segundo dígito empezando por el último del payload;
// los productos mayores a 9 suman sus dígitos. Control = (10 - suma%10) % 10.
func checkDigit(payload []byte) byte {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		n := int(payload[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}
