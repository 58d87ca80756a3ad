// utils/valid.go
package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptRegex    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitsRegex = regexp.MustCompile(`\D`)
)

// ErrInvalidPhone is returned when a number cannot be reduced to 10 digits
var ErrInvalidPhone = errors.New("phone number must have 10 digits")

// SanitizeInput sanitizes free text to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	// Remove any potential script tags before escaping
	input = scriptRegex.ReplaceAllString(input, "")

	input = html.EscapeString(input)

	// Remove control characters, keeping line breaks
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// SanitizeEmail trims and lowercases an email address and checks its shape
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// NormalizePhone reduces an Indian mobile number to its 10 national digits.
// Separators are stripped, then a leading trunk 0 or country code 91.
func NormalizePhone(phone string) (string, error) {
	digits := nonDigitsRegex.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	}
	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// SanitizeStringArray sanitizes an array of strings, dropping blanks
func SanitizeStringArray(inputs []string) []string {
	sanitized := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if clean := SanitizeInput(input); clean != "" {
			sanitized = append(sanitized, clean)
		}
	}
	return sanitized
}
