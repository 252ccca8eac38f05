package tools

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhone keeps only digits and a leading "+", e.g. "+44 (20) 7946-0958" -> "+442079460958".
// Numbers must carry 8 to 15 digits.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty phone")
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	phone := b.String()

	if len(phone) < 8 || len(phone) > 15 {
		return "", fmt.Errorf("invalid phone length: %d", len(phone))
	}
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "00") {
		return "+" + strings.TrimPrefix(phone, "00"), nil
	}
	return phone, nil
}
