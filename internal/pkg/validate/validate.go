// Package validate implements Brazilian document and phone format checks.
package validate

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCPF   = errors.New("invalid cpf")
	ErrInvalidPhone = errors.New("invalid phone number")
)

// CPF validates a Brazilian CPF and returns its normalized 11-digit form.
// Punctuation (dots, dash, spaces) is stripped before validation.
func CPF(cpf string) (string, error) {
	digits := stripNonDigits(cpf)
	if len(digits) != 11 {
		return "", ErrInvalidCPF
	}

	// Repeated digits pass the checksum but are not valid documents.
	if strings.Count(digits, digits[:1]) == 11 {
		return "", ErrInvalidCPF
	}

	if checkDigit(digits[:9], 10) != int(digits[9]-'0') {
		return "", ErrInvalidCPF
	}
	if checkDigit(digits[:10], 11) != int(digits[10]-'0') {
		return "", ErrInvalidCPF
	}

	return digits, nil
}

// checkDigit computes a CPF verification digit: weighted sum mod 11, where
// weights start at startWeight and decrease to 2.
func checkDigit(digits string, startWeight int) int {
	sum := 0
	for i, c := range digits {
		sum += int(c-'0') * (startWeight - i)
	}
	rest := sum * 10 % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}

// Phone validates a Brazilian phone number (DDD + 8 or 9 digits) and returns
// its normalized digit-only form.
func Phone(phone string) (string, error) {
	digits := stripNonDigits(phone)
	if len(digits) != 10 && len(digits) != 11 {
		return "", ErrInvalidPhone
	}
	// DDD area codes never start with 0.
	if digits[0] == '0' {
		return "", ErrInvalidPhone
	}
	// 11-digit numbers are mobile and carry the leading 9.
	if len(digits) == 11 && digits[2] != '9' {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
