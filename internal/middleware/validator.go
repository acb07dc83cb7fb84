package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

var (
	clientIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	reportIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

const (
	maxFilenameLen = 255
	maxAddressLen  = 512
)

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

// ValidateClientID validates client ID format
func ValidateClientID(client string) error {
	if client == "" {
		return fmt.Errorf("client ID cannot be empty")
	}
	if !clientIDRe.MatchString(client) {
		return fmt.Errorf("invalid client ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateReportID accepts generated UUIDs and caller-chosen slugs.
func ValidateReportID(id string) error {
	if id == "" {
		return fmt.Errorf("report ID cannot be empty")
	}
	if !reportIDRe.MatchString(id) {
		return fmt.Errorf("invalid report ID format")
	}
	return nil
}

// ValidateFilename accepts a bare photo file name, never a path.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("file name cannot be empty")
	case len(name) > maxFilenameLen:
		return fmt.Errorf("file name too long")
	case !utf8.ValidString(name):
		return fmt.Errorf("file name is not valid UTF-8")
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("file name must not contain path separators")
	case name == "." || name == "..":
		return fmt.Errorf("invalid file name")
	case SanitizeString(name) != name:
		return fmt.Errorf("invalid characters in file name")
	}
	return nil
}

// ValidateAddress cleans a property address query value.
func ValidateAddress(address string) (string, error) {
	a := SanitizeString(address)
	if a == "" {
		return "", fmt.Errorf("address is required")
	}
	if len(a) > maxAddressLen {
		return "", fmt.Errorf("address too long")
	}
	return a, nil
}

// ValidateLimit validates list limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
