package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const (
	maxTargetLength = 2048

	defaultLimit = 20
	maxLimit     = 100
)

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	result.Grow(len(input))
	for _, r := range input {
		if r == utf8.RuneError {
			continue
		}
		if (r >= 32 && r != 127) || r == '\t' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTarget checks a sanitized target (URL or host identifier).
func ValidateTarget(target string) error {
	if target == "" {
		return fmt.Errorf("target cannot be empty")
	}
	if len(target) > maxTargetLength {
		return fmt.Errorf("target too long (max %d bytes)", maxTargetLength)
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// ParseLimit reads a "limit" query value; garbage falls back to the default.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultLimit
	}
	return ValidateLimit(n)
}
