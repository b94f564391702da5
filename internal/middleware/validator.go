package middleware

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
)

// ErrInvalidInput marks request values that failed validation.
var ErrInvalidInput = errors.New("invalid input")

const maxQueryRunes = 200

var applicationNumberPattern = regexp.MustCompile(`^[A-Za-z0-9/_.-]{1,64}$`)

// ValidateScreen checks the screen name against the catalog.
func ValidateScreen(name string) (screens.Name, error) {
	s, err := screens.Lookup(screens.Name(strings.ToLower(strings.TrimSpace(name))))
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// ParsePage reads the page query parameter. Empty means 1; out-of-range
// numbers are left for the list to clamp.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return math.MinInt, nil
		}
		return math.MaxInt, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: page must be a number", ErrInvalidInput)
	}
	return n, nil
}

// ValidateQuery returns the search string untouched. Spaces are part of the
// match, so nothing is trimmed; over-long queries are refused.
func ValidateQuery(q string) (string, error) {
	if utf8.RuneCountInString(q) > maxQueryRunes {
		return "", fmt.Errorf("%w: query longer than %d characters", ErrInvalidInput, maxQueryRunes)
	}
	return q, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateApplicationNumber accepts letters, digits and / _ . - up to 64 chars.
// An empty number is left to the review service.
func ValidateApplicationNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	if !applicationNumberPattern.MatchString(number) {
		return fmt.Errorf("%w: application number format", ErrInvalidInput)
	}
	return nil
}

// ValidateSessionToken checks the token is a UUID.
func ValidateSessionToken(token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return fmt.Errorf("%w: session token", ErrInvalidInput)
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be a number", ErrInvalidInput)
	}
	if limit <= 0 {
		return 20, nil
	}
	if limit > 100 {
		return 100, nil
	}
	return limit, nil
}
