// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxTickerLength = 12
	MaxNameLength   = 100
	MaxNotesLength  = 2048
)

// tradeDateLayout is the only accepted date format: a plain calendar date
// with no time or timezone component.
const tradeDateLayout = "2006-01-02"

var tickerRegex = regexp.MustCompile(`^[A-Z0-9.\-]{1,12}$`)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateTicker checks that a symbol is short uppercase alphanumeric with
// the usual exchange punctuation (e.g. BRK.B, VWRA.L).
func ValidateTicker(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "Ticker"); err != nil {
		return err
	}
	if !tickerRegex.MatchString(trimmed) {
		return fmt.Errorf("%w: Ticker ('%s') is not in the expected format (uppercase letters, digits, dot, dash)", ErrValidationFailed, s)
	}
	return nil
}

// ValidateTradeDate checks a string is a valid YYYY-MM-DD calendar date.
// The round-trip check rejects dates that normalize (e.g. 2024-02-31).
func ValidateTradeDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "Date"); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(tradeDateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: Date ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, s, err)
	}
	if t.Format(tradeDateLayout) != trimmed {
		return time.Time{}, fmt.Errorf("%w: Date ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, s)
	}
	return t, nil
}

// ValidateFloatRange checks a numeric field is within sane dashboard bounds.
func ValidateFloatRange(v float64, fieldName string, minVal, maxVal float64) error {
	if v < minVal || v > maxVal {
		return fmt.Errorf("%w: %s must be between %.2f and %.2f, got %.2f", ErrValidationFailed, fieldName, minVal, maxVal, v)
	}
	return nil
}

// ValidateAPY clamps nothing: an APY outside [0,1] is rejected so a percent
// entered as 4.5 instead of 0.045 is caught at the boundary.
func ValidateAPY(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: APY must be a decimal between 0 and 1", ErrValidationFailed)
	}
	return nil
}
