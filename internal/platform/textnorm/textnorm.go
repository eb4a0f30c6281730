// Package textnorm normalizes free-text fields before they are stored.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean trims surrounding whitespace and converts to NFC so that visually
// identical names compare equal in the database.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CleanPtr returns nil for nil or blank input.
func CleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Clean(*s)
	if v == "" {
		return nil
	}
	return &v
}
