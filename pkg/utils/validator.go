package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonDigits    = regexp.MustCompile(`\D`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// DigitsOnly strips every non-digit character from an identifier.
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ValidateCPF validates a Brazilian CPF (9 digits plus two check digits).
// Punctuation is ignored.
func ValidateCPF(cpf string) error {
	digits := DigitsOnly(cpf)
	if len(digits) != 11 {
		return fmt.Errorf("cpf must have 11 digits: %s", cpf)
	}
	if allSameDigit(digits) {
		return fmt.Errorf("cpf digits are all equal: %s", cpf)
	}
	if cpfCheckDigit(digits, 9) != int(digits[9]-'0') ||
		cpfCheckDigit(digits, 10) != int(digits[10]-'0') {
		return fmt.Errorf("cpf check digits do not match: %s", cpf)
	}
	return nil
}

// cpfCheckDigit computes the check digit over the first n digits.
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ validates a Brazilian CNPJ (12 digits plus two check digits).
// Punctuation is ignored.
func ValidateCNPJ(cnpj string) error {
	digits := DigitsOnly(cnpj)
	if len(digits) != 14 {
		return fmt.Errorf("cnpj must have 14 digits: %s", cnpj)
	}
	if allSameDigit(digits) {
		return fmt.Errorf("cnpj digits are all equal: %s", cnpj)
	}
	if cnpjCheckDigit(digits, cnpjWeightsFirst) != int(digits[12]-'0') ||
		cnpjCheckDigit(digits, cnpjWeightsSecond) != int(digits[13]-'0') {
		return fmt.Errorf("cnpj check digits do not match: %s", cnpj)
	}
	return nil
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// ValidateIdentifier validates a value against an identifier kind: "cpf",
// "cnpj", or "auto" which picks the rule by digit count.
func ValidateIdentifier(kind, value string) error {
	switch strings.ToLower(kind) {
	case "cpf":
		return ValidateCPF(value)
	case "cnpj":
		return ValidateCNPJ(value)
	case "auto", "":
		if len(DigitsOnly(value)) == 14 {
			return ValidateCNPJ(value)
		}
		return ValidateCPF(value)
	default:
		return fmt.Errorf("unknown identifier kind: %s", kind)
	}
}

// SanitizeString removes control characters from user-supplied text.
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
