package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// sparqlIDRegex matches SPARQL variable names as used for node and property ids.
var sparqlIDRegex = regexp.MustCompile(`^\?[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateSparqlID validates a SPARQL variable identifier such as "?Battery".
//
// The validation rules:
//   - No empty ids
//   - Must start with '?'
//   - Remainder is a letter or underscore followed by letters, digits or underscores
func ValidateSparqlID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSparqlID, "sparql id cannot be empty")
	}
	if !sparqlIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSparqlID, "invalid sparql id: %q", id)
	}
	return nil
}

// ValidateURI validates an ontology URI for class and property references.
// It only rejects values that can never be a URI; it does not resolve them.
func ValidateURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidURI, "URI cannot be empty")
	}

	const maxURILength = 2048
	if len(uri) > maxURILength {
		return New(ErrCodeInvalidURI, "URI too long (max %d characters)", maxURILength)
	}

	for _, r := range uri {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidURI, "URI contains whitespace or control characters: %q", uri)
		}
	}

	if !strings.Contains(uri, ":") {
		return New(ErrCodeInvalidURI, "URI has no scheme: %q", uri)
	}

	return nil
}

// ValidateRecordID validates a store record id for safety.
// Record ids become file names and keys, so path traversal is rejected.
//
// Validation rules:
//   - Id cannot be empty
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRecordID, "record id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidRecordID, "record id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRecordID, "record id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidRecordID, "record id contains invalid characters: %q", pattern)
		}
	}

	return nil
}
