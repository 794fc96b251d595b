package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/models"
)

var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// Clean trims whitespace and strips a leading currency symbol when it is not
// actually followed by a numeric amount.
func Clean(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "$") {
		rest := strings.NewReplacer(",", "", ".", "").Replace(cleaned[1:])
		if rest == "" || !isDigits(rest) {
			cleaned = strings.TrimSpace(cleaned[1:])
		}
	}
	return cleaned
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ToNumeric strips everything but digits and the decimal point and parses the
// remainder. Unparsable input yields 0, never an error.
func ToNumeric(text string) float64 {
	numeric := nonNumericRe.ReplaceAllString(text, "")
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0
	}
	return value
}

// Validate reports whether a cleaned price text is a plausible value for the
// given category. Crypto values must exceed 1; stock and product prices must
// fall in their expected ranges; other categories accept any parsed number.
func Validate(text string, category models.Category) bool {
	if text == "" {
		return false
	}
	numeric := nonNumericRe.ReplaceAllString(text, "")
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return false
	}

	switch category {
	case models.CategoryCrypto:
		return value > 1
	case models.CategoryStock:
		return value >= 0.01 && value <= 10000
	case models.CategoryProduct:
		return value >= 0.01 && value <= 100000
	default:
		return true
	}
}

// IsLikelyCryptoPrice reports whether a value is plausible as a major
// cryptocurrency price. This is the stricter ranking filter: candidates at or
// below $10 are discarded before best-price selection, while Validate keeps
// its looser >1 bound for basic validity.
func IsLikelyCryptoPrice(text string) bool {
	numeric := nonNumericRe.ReplaceAllString(text, "")
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return false
	}
	return value > 10
}
